package sqlite

import (
	"bytes"
	"database/sql"
	"path/filepath"
	"testing"
)

func seedDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.sqlite3")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open seed db: %v", err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE people (name TEXT, age TEXT)`,
		`INSERT INTO people (name, age) VALUES ('alice', '30')`,
		`INSERT INTO people (name, age) VALUES ('bob', '25')`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return dbPath
}

func TestOpenCloseRoundTrip(t *testing.T) {
	m := New()
	path := seedDB(t)

	if err := m.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	tables, err := m.GetTableNames()
	if err != nil {
		t.Fatalf("GetTableNames: %v", err)
	}
	if len(tables) != 1 || tables[0] != "people" {
		t.Errorf("GetTableNames() = %v, want [people]", tables)
	}
}

func TestReadWriteCell(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	cell, err := m.GetCell("people", "1", "name")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}
	if !bytes.Equal(cell, []byte("alice")) {
		t.Errorf("GetCell(people,1,name) = %q, want alice", cell)
	}

	if err := m.SetCell("people", "1", "name", []byte("bob")); err != nil {
		t.Fatalf("SetCell: %v", err)
	}
	cell, err = m.GetCell("people", "1", "name")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}
	if !bytes.Equal(cell, []byte("bob")) {
		t.Errorf("GetCell after SetCell = %q, want bob", cell)
	}
}

func TestGetCellMissingColumnReturnsNil(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	cell, err := m.GetCell("people", "1", "nonexistent")
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}
	if cell != nil {
		t.Errorf("GetCell with missing column = %q, want nil", cell)
	}
}

func TestRenameTable(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if err := m.RenameTable("people", "persons"); err != nil {
		t.Fatalf("RenameTable: %v", err)
	}
	tables, err := m.GetTableNames()
	if err != nil {
		t.Fatalf("GetTableNames: %v", err)
	}
	if len(tables) != 1 || tables[0] != "persons" {
		t.Errorf("GetTableNames() after rename = %v, want [persons]", tables)
	}
}

func TestCreateAndRemoveColumn(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if err := m.CreateColumn("people", "email"); err != nil {
		t.Fatalf("CreateColumn: %v", err)
	}
	cols, err := m.GetColumnNames("people", "1")
	if err != nil {
		t.Fatalf("GetColumnNames: %v", err)
	}
	found := false
	for _, c := range cols {
		if c == "email" {
			found = true
		}
	}
	if !found {
		t.Errorf("GetColumnNames() = %v, missing email", cols)
	}

	if err := m.RemoveColumn("people", "email"); err == nil {
		t.Errorf("RemoveColumn should always fail, got nil error")
	}
}

func TestCreateTableAndRowNotImplemented(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if err := m.CreateTable("new_table"); err == nil {
		t.Errorf("CreateTable should always fail")
	}
	if err := m.CreateRow("people"); err == nil {
		t.Errorf("CreateRow should always fail")
	}
}

func TestRemoveRow(t *testing.T) {
	m := New()
	if err := m.Open(seedDB(t)); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	if err := m.RemoveRow("people", "2"); err != nil {
		t.Fatalf("RemoveRow: %v", err)
	}
	rows, err := m.GetRowNames("people")
	if err != nil {
		t.Fatalf("GetRowNames: %v", err)
	}
	if len(rows) != 1 || rows[0] != "1" {
		t.Errorf("GetRowNames() after remove = %v, want [1]", rows)
	}
}
