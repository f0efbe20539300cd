package postgres

import "testing"

// These tests exercise the argument-validation and no-handle paths that
// don't require a live PostgreSQL server; the query-building paths need
// a server and are not exercised here.

func TestNoHandleErrors(t *testing.T) {
	m := New()

	if _, err := m.GetTableNames(); err != errNoHandle {
		t.Errorf("GetTableNames() = %v, want errNoHandle", err)
	}
	if _, err := m.GetRowNames("t"); err != errNoHandle {
		t.Errorf("GetRowNames() = %v, want errNoHandle", err)
	}
	if _, err := m.GetColumnNames("t", "1"); err != errNoHandle {
		t.Errorf("GetColumnNames() = %v, want errNoHandle", err)
	}
	if _, err := m.GetCell("t", "1", "c"); err != errNoHandle {
		t.Errorf("GetCell() = %v, want errNoHandle", err)
	}
	if err := m.SetCell("t", "1", "c", []byte("x")); err != errNoHandle {
		t.Errorf("SetCell() = %v, want errNoHandle", err)
	}
	if err := m.RenameTable("a", "b"); err != errNoHandle {
		t.Errorf("RenameTable() = %v, want errNoHandle", err)
	}
	if err := m.CreateColumn("t", "c"); err != errNoHandle {
		t.Errorf("CreateColumn() = %v, want errNoHandle", err)
	}
	if err := m.RemoveTable("t"); err != errNoHandle {
		t.Errorf("RemoveTable() = %v, want errNoHandle", err)
	}
}

func TestMissingArguments(t *testing.T) {
	m := New()

	if names, err := m.GetRowNames(""); names != nil || err != nil {
		t.Errorf("GetRowNames(\"\") = (%v, %v), want (nil, nil)", names, err)
	}
	if cell, err := m.GetCell("", "1", "c"); cell != nil || err != nil {
		t.Errorf("GetCell with empty table = (%v, %v), want (nil, nil)", cell, err)
	}
}

func TestCreateTableRowNotImplemented(t *testing.T) {
	m := New()
	if err := m.CreateTable("t"); err == nil {
		t.Errorf("CreateTable should fail, mdbfs never implements table creation")
	}
	if err := m.CreateRow("t"); err == nil {
		t.Errorf("CreateRow should fail, mdbfs never implements row creation")
	}
	if err := m.RemoveColumn("t", "c"); err == nil {
		t.Errorf("RemoveColumn should fail, mdbfs never implements column removal")
	}
}

func TestClosedIsIdempotent(t *testing.T) {
	m := New()
	m.Close() // should warn, not panic, when nothing is open
}
