// Package sqlite implements the primary tabular database engine: a
// direct, single-table-per-directory mapping onto a SQLite file opened
// through the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mdbfs/mdbfs/internal/dbmanager/tabular"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

var errNoHandle = errors.New("sqlite: no database is open")

// Manager implements tabular.Manager against a SQLite file.
type Manager struct {
	mu sync.Mutex
	db *sql.DB
}

func New() *Manager {
	return &Manager{}
}

var _ tabular.Manager = (*Manager)(nil)

// quoteIdent escapes an identifier for use inside double quotes. Column
// and table names reach here from path components, never from a
// trusted schema, so embedding them unescaped would be a SQL injection
// vector; doubling embedded quotes is the standard SQL identifier
// escape.
func quoteIdent(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

func (m *Manager) Open(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		mlog.Warn("sqlite: open: it looks like a database is already loaded")
		mlog.Warn("sqlite: open: dropping the (previous?) session")
		m.db.Close()
		m.db = nil
	}

	mlog.Info("sqlite: opening database from %s", path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	m.db = db
	return nil
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		mlog.Warn("sqlite: close: attempting to close a closed connection")
		return
	}
	mlog.Info("sqlite: closing database")
	m.db.Close()
	m.db = nil
}

func (m *Manager) GetTableNames() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("sqlite: listing table names")

	rows, err := m.db.Query(`SELECT "name" FROM "sqlite_master" WHERE "type" = 'table'`)
	if err != nil {
		mlog.Warn("sqlite: get_table_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			mlog.Warn("sqlite: get_table_names: unexpected scan error: %v", err)
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		mlog.Warn("sqlite: get_table_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetRowNames(table string) ([]string, error) {
	if table == "" {
		mlog.Warn("sqlite: get_row_names: table name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("sqlite: listing rows in table %q", table)

	sqlStr := fmt.Sprintf(`SELECT CAST("ROWID" AS TEXT) FROM "%s"`, quoteIdent(table))
	rows, err := m.db.Query(sqlStr)
	if err != nil {
		mlog.Warn("sqlite: get_row_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			mlog.Warn("sqlite: get_row_names: unexpected scan error: %v", err)
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		mlog.Warn("sqlite: get_row_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetColumnNames(table, row string) ([]string, error) {
	if table == "" {
		mlog.Warn("sqlite: get_column_names: table name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("sqlite: listing column names in table %q", table)

	sqlStr := fmt.Sprintf(`SELECT * FROM "%s" WHERE "ROWID" = ?`, quoteIdent(table))
	rows, err := m.db.Query(sqlStr, row)
	if err != nil {
		mlog.Warn("sqlite: get_column_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		mlog.Debug("sqlite: get_column_names: nothing to show, the row may not exist")
		return nil, rows.Err()
	}
	names, err := rows.Columns()
	if err != nil {
		mlog.Warn("sqlite: get_column_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetCell(table, row, col string) ([]byte, error) {
	if table == "" || row == "" || col == "" {
		mlog.Warn("sqlite: get_cell: either table, row, or column name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("sqlite: get_cell: querying content in cell (%q, %q, %q)", table, row, col)

	sqlStr := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "ROWID" = ?`, quoteIdent(col), quoteIdent(table))
	var cell sql.NullString
	err := m.db.QueryRow(sqlStr, row).Scan(&cell)
	if errors.Is(err, sql.ErrNoRows) {
		mlog.Debug("sqlite: get_cell: nothing to show, confused")
		return nil, nil
	}
	if err != nil {
		mlog.Warn("sqlite: get_cell: %v", err)
		return nil, err
	}
	if !cell.Valid {
		mlog.Warn("sqlite: get_cell: unexpected null")
		return nil, nil
	}

	// The column name marker: a relational engine resolving an
	// unqualified identifier that is not an actual column falls back to
	// returning the identifier text itself. We treat that exact
	// collision as "no such column".
	if cell.String == col {
		mlog.Debug("sqlite: get_cell: the column does not exist")
		return nil, nil
	}

	return []byte(cell.String), nil
}

func (m *Manager) SetCell(table, row, col string, data []byte) error {
	if table == "" || row == "" || col == "" {
		mlog.Warn("sqlite: set_cell: either table, row, or column name is missing")
		return fmt.Errorf("sqlite: set_cell: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: set_cell: updating content in cell (%q, %q, %q)", table, row, col)

	sqlStr := fmt.Sprintf(`UPDATE "%s" SET "%s" = ? WHERE "ROWID" = ?`, quoteIdent(table), quoteIdent(col))
	if _, err := m.db.Exec(sqlStr, data, row); err != nil {
		mlog.Warn("sqlite: set_cell: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameTable(oldName, newName string) error {
	if oldName == "" || newName == "" {
		return fmt.Errorf("sqlite: rename_table: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: rename_table: altering table name from %q to %q", oldName, newName)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" RENAME TO "%s"`, quoteIdent(oldName), quoteIdent(newName))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("sqlite: rename_table: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameRow(table, oldRow, newRow string) error {
	if table == "" || oldRow == "" || newRow == "" {
		return fmt.Errorf("sqlite: rename_row: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: rename_row: altering row name in table %q from %q to %q", table, oldRow, newRow)
	sqlStr := fmt.Sprintf(`UPDATE "%s" SET "ROWID" = ? WHERE "ROWID" = ?`, quoteIdent(table))
	if _, err := m.db.Exec(sqlStr, newRow, oldRow); err != nil {
		mlog.Warn("sqlite: rename_row: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameColumn(table, row, oldCol, newCol string) error {
	if table == "" || oldCol == "" || newCol == "" {
		return fmt.Errorf("sqlite: rename_column: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: rename_column: altering column name in table %q from %q to %q", table, oldCol, newCol)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" RENAME COLUMN "%s" TO "%s"`, quoteIdent(table), quoteIdent(oldCol), quoteIdent(newCol))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("sqlite: rename_column: %v", err)
		return err
	}
	return nil
}

func (m *Manager) CreateColumn(table, col string) error {
	if table == "" || col == "" {
		return fmt.Errorf("sqlite: create_column: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: create_column: creating column %q in table %q", col, table)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s"`, quoteIdent(table), quoteIdent(col))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("sqlite: create_column: %v", err)
		return err
	}
	return nil
}

func (m *Manager) CreateTable(table string) error {
	mlog.Info("sqlite: create_table: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) CreateRow(table string) error {
	mlog.Info("sqlite: create_row: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) RemoveTable(table string) error {
	if table == "" {
		return fmt.Errorf("sqlite: remove_table: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: remove_table: dropping table %q", table)
	sqlStr := fmt.Sprintf(`DROP TABLE "%s"`, quoteIdent(table))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("sqlite: remove_table: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RemoveColumn(table, col string) error {
	mlog.Info("sqlite: remove_column: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) RemoveRow(table, row string) error {
	if table == "" || row == "" {
		return fmt.Errorf("sqlite: remove_row: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("sqlite: remove_row: deleting row %q in table %q", row, table)
	sqlStr := fmt.Sprintf(`DELETE FROM "%s" WHERE "ROWID" = ?`, quoteIdent(table))
	if _, err := m.db.Exec(sqlStr, row); err != nil {
		mlog.Warn("sqlite: remove_row: %v", err)
		return err
	}
	return nil
}
