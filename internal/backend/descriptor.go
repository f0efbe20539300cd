// Package backend defines the uniform capability surface each concrete
// database backend exposes to the dispatcher, and the registry that
// looks backends up by name.
package backend

import (
	"github.com/mdbfs/mdbfs/internal/fsops"
)

// Descriptor is the capability record a backend's factory produces: its
// self-reported identity, its lifecycle hooks, and its populated
// filesystem operation table.
type Descriptor struct {
	Name        string
	Description string
	Help        string
	Version     string

	// Open attaches the database artifact at path. It must be called
	// before FS is used, and closes any previously open handle first.
	Open func(path string) error
	// Close releases the database handle. Idempotent.
	Close func()

	// FS is the populated operation table handed to the FS host.
	FS fsops.PathFS
}

// Factory produces a fresh Descriptor for one backend instance.
type Factory func() *Descriptor
