// Package credentials loads the static AWS credentials the s3 key-value
// engine passes to its client: either from a --passwd-file given on the
// mdbfs command line, or from the process environment.
package credentials

import (
	"fmt"
	"os"
	"strings"

	"github.com/mdbfs/mdbfs/internal/mlog"
)

// Credentials is a static access-key/secret-key pair, optionally with a
// session token, for the s3 backend's SDK client.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
}

// NewCredentials returns an empty, invalid Credentials; callers populate
// it via LoadFromPasswdFile or LoadFromEnvironment before checking
// IsValid.
func NewCredentials() *Credentials {
	return &Credentials{}
}

// LoadFromPasswdFile reads a single "ACCESS_KEY:SECRET_KEY" line from
// path, the same passwd-file convention the s3 backend's --passwd-file
// flag documents.
func (c *Credentials) LoadFromPasswdFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("credentials: reading passwd file %q: %w", path, err)
	}

	line := strings.TrimSpace(string(data))
	accessKey, secretKey, ok := strings.Cut(line, ":")
	if !ok {
		return fmt.Errorf("credentials: passwd file %q: expected ACCESS_KEY:SECRET_KEY", path)
	}

	c.AccessKeyID = strings.TrimSpace(accessKey)
	c.SecretAccessKey = strings.TrimSpace(secretKey)

	mlog.Debug("credentials: loaded access key %q from %s", c.AccessKeyID, path)
	return nil
}

// LoadFromEnvironment reads AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, and
// the optional AWS_SESSION_TOKEN from the process environment.
func (c *Credentials) LoadFromEnvironment() error {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return fmt.Errorf("credentials: AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must both be set")
	}

	c.AccessKeyID = accessKey
	c.SecretAccessKey = secretKey
	c.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
	return nil
}

// IsValid reports whether both the access key and secret key are set.
// A zero-value Credentials is never valid.
func (c *Credentials) IsValid() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
