// Package postgres implements a secondary tabular database engine over
// PostgreSQL, using github.com/lib/pq and information_schema to resolve
// each table's single-column primary key as its intrinsic row
// identifier.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/lib/pq"

	"github.com/mdbfs/mdbfs/internal/dbmanager/tabular"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

var errNoHandle = errors.New("postgres: no database is open")

// Manager implements tabular.Manager against a PostgreSQL database.
// Every table exposed this way must carry exactly one primary key
// column; tables that don't are skipped by GetTableNames.
type Manager struct {
	mu sync.Mutex
	db *sql.DB
}

func New() *Manager {
	return &Manager{}
}

var _ tabular.Manager = (*Manager)(nil)

func quoteIdent(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

func (m *Manager) Open(connStr string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		mlog.Warn("postgres: open: it looks like a database is already loaded")
		mlog.Warn("postgres: open: dropping the (previous?) session")
		m.db.Close()
		m.db = nil
	}

	mlog.Info("postgres: opening database connection")

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("postgres: open: %w", err)
	}

	m.db = db
	return nil
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		mlog.Warn("postgres: close: attempting to close a closed connection")
		return
	}
	mlog.Info("postgres: closing database")
	m.db.Close()
	m.db = nil
}

// primaryKeyColumn resolves the single-column primary key of table, or
// "" if the table has no primary key or a composite one neither of
// which this mapping supports.
func (m *Manager) primaryKeyColumn(table string) (string, error) {
	const q = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
			AND tc.table_schema = 'public'
			AND tc.table_name = $1`

	rows, err := m.db.Query(q, table)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return "", err
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	if len(cols) != 1 {
		return "", nil
	}
	return cols[0], nil
}

func (m *Manager) GetTableNames() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	mlog.Debug("postgres: listing table names")

	rows, err := m.db.Query(`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`)
	if err != nil {
		mlog.Warn("postgres: get_table_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			mlog.Warn("postgres: get_table_names: unexpected scan error: %v", err)
			continue
		}
		// Only tables with a single-column primary key have an intrinsic
		// row identifier this mapping can address.
		pk, err := m.primaryKeyColumn(name)
		if err != nil {
			mlog.Warn("postgres: get_table_names: checking primary key of %q: %v", name, err)
			continue
		}
		if pk == "" {
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		mlog.Warn("postgres: get_table_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetRowNames(table string) ([]string, error) {
	if table == "" {
		mlog.Warn("postgres: get_row_names: table name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil {
		mlog.Warn("postgres: get_row_names: %v", err)
		return nil, err
	}
	if pk == "" {
		mlog.Debug("postgres: get_row_names: table %q has no single-column primary key", table)
		return nil, nil
	}

	mlog.Debug("postgres: listing rows in table %q", table)

	sqlStr := fmt.Sprintf(`SELECT CAST("%s" AS TEXT) FROM "%s"`, quoteIdent(pk), quoteIdent(table))
	rows, err := m.db.Query(sqlStr)
	if err != nil {
		mlog.Warn("postgres: get_row_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			mlog.Warn("postgres: get_row_names: unexpected scan error: %v", err)
			continue
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		mlog.Warn("postgres: get_row_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetColumnNames(table, row string) ([]string, error) {
	if table == "" {
		mlog.Warn("postgres: get_column_names: table name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil || pk == "" {
		return nil, err
	}

	mlog.Debug("postgres: listing column names in table %q", table)

	sqlStr := fmt.Sprintf(`SELECT * FROM "%s" WHERE "%s" = $1`, quoteIdent(table), quoteIdent(pk))
	rows, err := m.db.Query(sqlStr, row)
	if err != nil {
		mlog.Warn("postgres: get_column_names: %v", err)
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		mlog.Debug("postgres: get_column_names: nothing to show, the row may not exist")
		return nil, rows.Err()
	}
	names, err := rows.Columns()
	if err != nil {
		mlog.Warn("postgres: get_column_names: %v", err)
		return nil, err
	}
	return names, nil
}

func (m *Manager) GetCell(table, row, col string) ([]byte, error) {
	if table == "" || row == "" || col == "" {
		mlog.Warn("postgres: get_cell: either table, row, or column name is missing")
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil, errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil || pk == "" {
		return nil, err
	}

	// information_schema.columns gives a real existence check here,
	// unlike the string-literal-fallback heuristic the SQLite engine
	// relies on.
	exists, err := m.columnExists(table, col)
	if err != nil {
		return nil, err
	}
	if !exists {
		mlog.Debug("postgres: get_cell: column %q does not exist in table %q", col, table)
		return nil, nil
	}

	mlog.Debug("postgres: get_cell: querying content in cell (%q, %q, %q)", table, row, col)

	sqlStr := fmt.Sprintf(`SELECT "%s" FROM "%s" WHERE "%s" = $1`, quoteIdent(col), quoteIdent(table), quoteIdent(pk))
	var cell sql.NullString
	err = m.db.QueryRow(sqlStr, row).Scan(&cell)
	if errors.Is(err, sql.ErrNoRows) {
		mlog.Debug("postgres: get_cell: nothing to show, confused")
		return nil, nil
	}
	if err != nil {
		mlog.Warn("postgres: get_cell: %v", err)
		return nil, err
	}
	if !cell.Valid {
		return []byte{}, nil
	}
	return []byte(cell.String), nil
}

func (m *Manager) columnExists(table, col string) (bool, error) {
	const q = `SELECT 1 FROM information_schema.columns WHERE table_schema = 'public' AND table_name = $1 AND column_name = $2`
	var exists int
	err := m.db.QueryRow(q, table, col).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) SetCell(table, row, col string, data []byte) error {
	if table == "" || row == "" || col == "" {
		return fmt.Errorf("postgres: set_cell: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil {
		return err
	}
	if pk == "" {
		return fmt.Errorf("postgres: set_cell: table %q has no single-column primary key", table)
	}

	mlog.Debug("postgres: set_cell: updating content in cell (%q, %q, %q)", table, row, col)

	sqlStr := fmt.Sprintf(`UPDATE "%s" SET "%s" = $1 WHERE "%s" = $2`, quoteIdent(table), quoteIdent(col), quoteIdent(pk))
	if _, err := m.db.Exec(sqlStr, data, row); err != nil {
		mlog.Warn("postgres: set_cell: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameTable(oldName, newName string) error {
	if oldName == "" || newName == "" {
		return fmt.Errorf("postgres: rename_table: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("postgres: rename_table: altering table name from %q to %q", oldName, newName)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" RENAME TO "%s"`, quoteIdent(oldName), quoteIdent(newName))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("postgres: rename_table: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameRow(table, oldRow, newRow string) error {
	if table == "" || oldRow == "" || newRow == "" {
		return fmt.Errorf("postgres: rename_row: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil {
		return err
	}
	if pk == "" {
		return fmt.Errorf("postgres: rename_row: table %q has no single-column primary key", table)
	}

	mlog.Debug("postgres: rename_row: altering row identity in table %q from %q to %q", table, oldRow, newRow)
	sqlStr := fmt.Sprintf(`UPDATE "%s" SET "%s" = $1 WHERE "%s" = $2`, quoteIdent(table), quoteIdent(pk), quoteIdent(pk))
	if _, err := m.db.Exec(sqlStr, newRow, oldRow); err != nil {
		mlog.Warn("postgres: rename_row: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RenameColumn(table, row, oldCol, newCol string) error {
	if table == "" || oldCol == "" || newCol == "" {
		return fmt.Errorf("postgres: rename_column: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("postgres: rename_column: altering column name in table %q from %q to %q", table, oldCol, newCol)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" RENAME COLUMN "%s" TO "%s"`, quoteIdent(table), quoteIdent(oldCol), quoteIdent(newCol))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("postgres: rename_column: %v", err)
		return err
	}
	return nil
}

func (m *Manager) CreateColumn(table, col string) error {
	if table == "" || col == "" {
		return fmt.Errorf("postgres: create_column: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("postgres: create_column: creating column %q in table %q", col, table)
	sqlStr := fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s" TEXT`, quoteIdent(table), quoteIdent(col))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("postgres: create_column: %v", err)
		return err
	}
	return nil
}

func (m *Manager) CreateTable(table string) error {
	mlog.Info("postgres: create_table: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) CreateRow(table string) error {
	mlog.Info("postgres: create_row: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) RemoveTable(table string) error {
	if table == "" {
		return fmt.Errorf("postgres: remove_table: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	mlog.Debug("postgres: remove_table: dropping table %q", table)
	sqlStr := fmt.Sprintf(`DROP TABLE "%s"`, quoteIdent(table))
	if _, err := m.db.Exec(sqlStr); err != nil {
		mlog.Warn("postgres: remove_table: %v", err)
		return err
	}
	return nil
}

func (m *Manager) RemoveColumn(table, col string) error {
	mlog.Info("postgres: remove_column: not implemented")
	return tabular.ErrNotImplemented
}

func (m *Manager) RemoveRow(table, row string) error {
	if table == "" || row == "" {
		return fmt.Errorf("postgres: remove_row: missing argument")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return errNoHandle
	}

	pk, err := m.primaryKeyColumn(table)
	if err != nil {
		return err
	}
	if pk == "" {
		return fmt.Errorf("postgres: remove_row: table %q has no single-column primary key", table)
	}

	mlog.Debug("postgres: remove_row: deleting row %q in table %q", row, table)
	sqlStr := fmt.Sprintf(`DELETE FROM "%s" WHERE "%s" = $1`, quoteIdent(table), quoteIdent(pk))
	if _, err := m.db.Exec(sqlStr, row); err != nil {
		mlog.Warn("postgres: remove_row: %v", err)
		return err
	}
	return nil
}
