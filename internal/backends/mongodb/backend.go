package mongodb

import (
	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/fsops"
)

const (
	Name        = "mongodb"
	description = "key-value database backend over a MongoDB collection"
	version     = "1.0.0"
	help        = "mount a MongoDB database given as a mongodb:// URI; every document _id becomes a file at the mount root"
)

// NewDescriptor builds the mongodb backend's capability record.
// Register it under its primary name and the "mongo" alias.
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
