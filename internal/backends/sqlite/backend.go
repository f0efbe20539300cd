package sqlite

import (
	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/fsops"
)

const (
	Name        = "sqlite"
	description = "relational database backend over a SQLite file"
	version     = "1.0.0"
	help        = "mount a SQLite database file; tables become directories, rows become subdirectories keyed by rowid, columns become files"
)

// NewDescriptor builds the sqlite backend's capability record. Register
// it under both its primary name and the "sqlite3" alias.
func NewDescriptor() *backend.Descriptor {
	mgr := New()
	return &backend.Descriptor{
		Name:        Name,
		Description: description,
		Help:        help,
		Version:     version,
		Open:        mgr.Open,
		Close:       mgr.Close,
		FS:          fsops.NewTabular(mgr),
	}
}
