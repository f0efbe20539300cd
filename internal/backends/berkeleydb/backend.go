package berkeleydb

import (
	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/fsops"
)

const (
	Name        = "berkeleydb"
	description = "key-value database backend over a bbolt file"
	version     = "1.0.0"
	help        = "mount a flat key-value database file; every record key becomes a file at the mount root"
)

// NewDescriptor builds the berkeleydb backend's capability record.
// Register it under its primary name and the "bdb", "db" aliases.
func NewDescriptor() *backend.Descriptor {
	mgr := New()
	return &backend.Descriptor{
		Name:        Name,
		Description: description,
		Help:        help,
		Version:     version,
		Open:        mgr.Open,
		Close:       mgr.Close,
		FS:          fsops.NewKV(mgr),
	}
}
