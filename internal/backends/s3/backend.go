package s3

import (
	"github.com/mdbfs/mdbfs/internal/backend"
	"github.com/mdbfs/mdbfs/internal/fsops"
)

const (
	Name        = "s3"
	description = "key-value database backend over an S3 bucket"
	version     = "1.0.0"
	help        = "mount an S3 (or S3-compatible) bucket given as \"bucket\" or \"bucket@region\"; every object key becomes a file at the mount root"
)

// NewDescriptor builds the s3 backend's capability record. Register it
// under its primary name and the "s3fs" alias.
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
