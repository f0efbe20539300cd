package berkeleydb

import (
	"bytes"
	"path/filepath"
	"testing"
)

func newManager(t *testing.T) *Manager {
	t.Helper()
	m := New()
	path := filepath.Join(t.TempDir(), "test.bbolt")
	if err := m.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func TestSetGetRecordValue(t *testing.T) {
	m := newManager(t)

	if err := m.SetRecordValue("k1", []byte("hello")); err != nil {
		t.Fatalf("SetRecordValue: %v", err)
	}
	v, err := m.GetRecordValue("k1")
	if err != nil {
		t.Fatalf("GetRecordValue: %v", err)
	}
	if !bytes.Equal(v, []byte("hello")) {
		t.Errorf("GetRecordValue(k1) = %q, want hello", v)
	}
}

func TestGetRecordValueMissingReturnsNil(t *testing.T) {
	m := newManager(t)
	v, err := m.GetRecordValue("nope")
	if err != nil {
		t.Fatalf("GetRecordValue: %v", err)
	}
	if v != nil {
		t.Errorf("GetRecordValue(missing) = %q, want nil", v)
	}
}

func TestGetRecordKeysEmptyIsNonNil(t *testing.T) {
	m := newManager(t)
	keys, err := m.GetRecordKeys()
	if err != nil {
		t.Fatalf("GetRecordKeys: %v", err)
	}
	if keys == nil {
		t.Errorf("GetRecordKeys() = nil, want non-nil empty slice")
	}
	if len(keys) != 0 {
		t.Errorf("GetRecordKeys() = %v, want empty", keys)
	}
}

func TestRenameRecord(t *testing.T) {
	m := newManager(t)
	m.SetRecordValue("old", []byte("value"))

	if err := m.RenameRecord("old", "new"); err != nil {
		t.Fatalf("RenameRecord: %v", err)
	}

	if v, _ := m.GetRecordValue("old"); v != nil {
		t.Errorf("old key still present after rename: %q", v)
	}
	v, err := m.GetRecordValue("new")
	if err != nil {
		t.Fatalf("GetRecordValue: %v", err)
	}
	if !bytes.Equal(v, []byte("value")) {
		t.Errorf("GetRecordValue(new) = %q, want value", v)
	}
}

func TestRenameRecordMissingSourceFails(t *testing.T) {
	m := newManager(t)
	if err := m.RenameRecord("nope", "new"); err == nil {
		t.Errorf("RenameRecord(missing source) should fail")
	}
}

func TestCreateAndRemoveRecord(t *testing.T) {
	m := newManager(t)
	if err := m.CreateRecord("k1"); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	v, err := m.GetRecordValue("k1")
	if err != nil || v == nil {
		t.Fatalf("GetRecordValue after create: %q, %v", v, err)
	}

	if err := m.RemoveRecord("k1"); err != nil {
		t.Fatalf("RemoveRecord: %v", err)
	}
	v, err = m.GetRecordValue("k1")
	if err != nil {
		t.Fatalf("GetRecordValue after remove: %v", err)
	}
	if v != nil {
		t.Errorf("GetRecordValue after remove = %q, want nil", v)
	}
}
