package credentials

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPasswdFile(t *testing.T) {
	passwdFile := filepath.Join(t.TempDir(), ".passwd-mdbfs")
	if err := os.WriteFile(passwdFile, []byte("TEST_ACCESS_KEY:TEST_SECRET_KEY\n"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewCredentials()
	if err := c.LoadFromPasswdFile(passwdFile); err != nil {
		t.Fatalf("LoadFromPasswdFile: %v", err)
	}
	if c.AccessKeyID != "TEST_ACCESS_KEY" {
		t.Errorf("AccessKeyID = %q, want %q", c.AccessKeyID, "TEST_ACCESS_KEY")
	}
	if c.SecretAccessKey != "TEST_SECRET_KEY" {
		t.Errorf("SecretAccessKey = %q, want %q", c.SecretAccessKey, "TEST_SECRET_KEY")
	}
}

func TestLoadFromPasswdFileSecretContainingColon(t *testing.T) {
	// Only the first colon separates key from secret; a secret value
	// that itself contains a colon must survive intact.
	passwdFile := filepath.Join(t.TempDir(), ".passwd-mdbfs")
	if err := os.WriteFile(passwdFile, []byte("KEY:sec:ret"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewCredentials()
	if err := c.LoadFromPasswdFile(passwdFile); err != nil {
		t.Fatalf("LoadFromPasswdFile: %v", err)
	}
	if c.SecretAccessKey != "sec:ret" {
		t.Errorf("SecretAccessKey = %q, want %q", c.SecretAccessKey, "sec:ret")
	}
}

func TestLoadFromPasswdFileInvalidFormat(t *testing.T) {
	passwdFile := filepath.Join(t.TempDir(), ".passwd-mdbfs")
	if err := os.WriteFile(passwdFile, []byte("NO_COLON_HERE"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	c := NewCredentials()
	if err := c.LoadFromPasswdFile(passwdFile); err == nil {
		t.Error("LoadFromPasswdFile with no colon should fail")
	}
}

func TestLoadFromPasswdFileNotFound(t *testing.T) {
	c := NewCredentials()
	if err := c.LoadFromPasswdFile("/nonexistent/file"); err == nil {
		t.Error("LoadFromPasswdFile on a missing file should fail")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "ENV_ACCESS_KEY")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "ENV_SECRET_KEY")
	t.Setenv("AWS_SESSION_TOKEN", "ENV_SESSION_TOKEN")

	c := NewCredentials()
	if err := c.LoadFromEnvironment(); err != nil {
		t.Fatalf("LoadFromEnvironment: %v", err)
	}
	if c.AccessKeyID != "ENV_ACCESS_KEY" {
		t.Errorf("AccessKeyID = %q, want %q", c.AccessKeyID, "ENV_ACCESS_KEY")
	}
	if c.SecretAccessKey != "ENV_SECRET_KEY" {
		t.Errorf("SecretAccessKey = %q, want %q", c.SecretAccessKey, "ENV_SECRET_KEY")
	}
	if c.SessionToken != "ENV_SESSION_TOKEN" {
		t.Errorf("SessionToken = %q, want %q", c.SessionToken, "ENV_SESSION_TOKEN")
	}
}

func TestLoadFromEnvironmentMissing(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "")

	c := NewCredentials()
	if err := c.LoadFromEnvironment(); err == nil {
		t.Error("LoadFromEnvironment with no keys set should fail")
	}
}

func TestIsValid(t *testing.T) {
	c := NewCredentials()
	if c.IsValid() {
		t.Error("zero-value Credentials should not be valid")
	}

	c.AccessKeyID = "TEST_KEY"
	c.SecretAccessKey = "TEST_SECRET"
	if !c.IsValid() {
		t.Error("Credentials with both keys set should be valid")
	}
}
