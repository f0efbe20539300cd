package postgres

import (
	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/fsops"
)

const (
	Name        = "postgres"
	description = "relational database backend over PostgreSQL"
	version     = "1.0.0"
	help        = "mount a PostgreSQL database given as a connection string; tables with a single-column primary key become directories"
)

// NewDescriptor builds the postgres backend's capability record.
// Register it under both its primary name and the "pg" alias.
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
