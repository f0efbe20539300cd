// Package fsops implements the filesystem operation layer: the
// per-backend translation of POSIX-style calls (getattr, readdir, read,
// write, mknod, rename, unlink, mkdir, rmdir, init, destroy) into
// database manager calls. Two implementations exist in this package,
// one per backend contract: Tabular and KV.
package fsops

import (
	"context"
	"os"
)

// Attr is the subset of file attributes the filesystem surface needs.
// Mode carries both the type bits (os.ModeDir) and the fixed permission
// bits; inode numbers are never populated, matching the "disable
// inode numbering" init-time configuration.
type Attr struct {
	Mode os.FileMode
	Size int64
}

// DirEntry is one entry returned by Readdir, already carrying the
// attributes the original source's readdir loop fetches per entry.
type DirEntry struct {
	Name string
	Attr Attr
}

// PathFS is the uniform filesystem operation table a backend populates.
// Every method receives an already-normalized absolute path and returns
// an error suitable for direct use as a FUSE result: implementations
// return a syscall.Errno (which satisfies the error interface), and
// fusehost hands it to bazil.org/fuse unchanged.
type PathFS interface {
	// Init performs no database work; inode numbering and direct I/O
	// are configured by the FS host, not here. It is called once after
	// Open.
	Init(ctx context.Context)
	// Destroy releases the database handle. It is called once at
	// unmount.
	Destroy(ctx context.Context)

	Getattr(ctx context.Context, path string) (Attr, error)
	Readdir(ctx context.Context, path string) ([]DirEntry, error)
	Read(ctx context.Context, path string, offset int64, size int) ([]byte, error)
	Write(ctx context.Context, path string, offset int64, data []byte) (int, error)
	Mknod(ctx context.Context, path string, mode uint32) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Unlink(ctx context.Context, path string) error
	Mkdir(ctx context.Context, path string, mode uint32) error
	Rmdir(ctx context.Context, path string) error
}

const (
	fileMode = os.FileMode(0644)
	dirMode  = os.FileMode(0755) | os.ModeDir
)
