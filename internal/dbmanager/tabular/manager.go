// Package tabular defines the engine-neutral CRUD vocabulary for
// relational database engines mapped as tables × rows × columns, and
// the per-engine Managers that implement it (SQLite, PostgreSQL).
package tabular

import "errors"

// ErrNotImplemented is returned by operations the source never
// implements for any tabular engine (table/row creation, column
// removal): they always fail.
var ErrNotImplemented = errors.New("tabular: operation not implemented")

// Manager is the contract every tabular engine implements. A single
// Manager instance owns at most one open database handle at a time, per
// the state machine in the data model: reopening drops any previously
// open handle, and every other method fails if no handle is open.
type Manager interface {
	// Open attaches the database artifact at path, replacing any
	// currently open handle.
	Open(path string) error
	// Close releases the open handle. Calling Close with nothing open
	// is a safe no-op (a warning is logged, not an error).
	Close()

	GetTableNames() ([]string, error)
	GetRowNames(table string) ([]string, error)
	GetColumnNames(table, row string) ([]string, error)
	GetCell(table, row, col string) ([]byte, error)
	SetCell(table, row, col string, data []byte) error

	RenameTable(oldName, newName string) error
	RenameRow(table, oldRow, newRow string) error
	RenameColumn(table, row, oldCol, newCol string) error

	CreateColumn(table, col string) error
	CreateTable(table string) error
	CreateRow(table string) error

	RemoveTable(table string) error
	RemoveRow(table, row string) error
	RemoveColumn(table, col string) error
}
