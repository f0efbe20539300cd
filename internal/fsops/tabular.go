package fsops

import (
	"context"
	"syscall"

	"github.com/mdbfs/mdbfs/internal/dbmanager/tabular"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

// Tabular implements PathFS against a tabular.Manager, translating the
// tables/rows/columns hierarchy onto getattr/readdir/read/write and the
// mutating calls.
type Tabular struct {
	Mgr tabular.Manager
}

func NewTabular(mgr tabular.Manager) *Tabular {
	return &Tabular{Mgr: mgr}
}

var _ PathFS = (*Tabular)(nil)

// Init sets host-side configuration: disabling inode numbering and
// forcing direct I/O is the FS host's job once it receives this table;
// this method does no database work, matching the original's init,
// which returns no private state.
func (t *Tabular) Init(ctx context.Context) {}

func (t *Tabular) Destroy(ctx context.Context) {
	t.Mgr.Close()
}

func (t *Tabular) Getattr(ctx context.Context, path string) (Attr, error) {
	dp, ok := DecodeTabularPath(path)
	if !ok {
		return Attr{}, syscall.ENOENT
	}
	return t.getattrDecoded(dp)
}

func (t *Tabular) getattrDecoded(dp TabularPath) (Attr, error) {
	switch dp.Tag {
	case TagColumn:
		cell, err := t.Mgr.GetCell(dp.Table, dp.Row, dp.Column)
		if err != nil {
			mlog.Warn("tabular: getattr: %v", err)
			return Attr{}, syscall.EINTR
		}
		if cell == nil {
			return Attr{}, syscall.ENOENT
		}
		return Attr{Mode: fileMode, Size: int64(len(cell))}, nil

	case TagDatabase:
		names, err := t.Mgr.GetTableNames()
		if err != nil {
			mlog.Warn("tabular: getattr: %v", err)
			return Attr{}, syscall.EINTR
		}
		if names == nil {
			return Attr{}, syscall.ENOENT
		}
		return Attr{Mode: dirMode}, nil

	case TagTable:
		names, err := t.Mgr.GetRowNames(dp.Table)
		if err != nil {
			mlog.Warn("tabular: getattr: %v", err)
			return Attr{}, syscall.EINTR
		}
		if names == nil {
			return Attr{}, syscall.ENOENT
		}
		return Attr{Mode: dirMode}, nil

	case TagRow:
		names, err := t.Mgr.GetColumnNames(dp.Table, dp.Row)
		if err != nil {
			mlog.Warn("tabular: getattr: %v", err)
			return Attr{}, syscall.EINTR
		}
		if names == nil {
			return Attr{}, syscall.ENOENT
		}
		return Attr{Mode: dirMode}, nil
	}
	return Attr{}, syscall.ENOENT
}

func (t *Tabular) Readdir(ctx context.Context, path string) ([]DirEntry, error) {
	dp, ok := DecodeTabularPath(path)
	if !ok {
		return nil, syscall.ENOENT
	}
	if dp.Tag == TagColumn {
		return nil, syscall.ENOENT
	}

	var names []string
	var err error
	var childOf func(name string) TabularPath

	switch dp.Tag {
	case TagDatabase:
		names, err = t.Mgr.GetTableNames()
		childOf = func(name string) TabularPath { return TabularPath{Tag: TagTable, Table: name} }
	case TagTable:
		names, err = t.Mgr.GetRowNames(dp.Table)
		childOf = func(name string) TabularPath { return TabularPath{Tag: TagRow, Table: dp.Table, Row: name} }
	case TagRow:
		names, err = t.Mgr.GetColumnNames(dp.Table, dp.Row)
		childOf = func(name string) TabularPath {
			return TabularPath{Tag: TagColumn, Table: dp.Table, Row: dp.Row, Column: name}
		}
	}
	if err != nil {
		mlog.Warn("tabular: readdir: %v", err)
		return nil, syscall.EINTR
	}
	if names == nil {
		return nil, syscall.ENOENT
	}

	entries := make([]DirEntry, 0, len(names))
	for _, name := range names {
		// Attributes are fetched for the child entry itself, not the
		// listed directory, so that a file's mode/size reflect what it
		// actually is.
		attr, err := t.getattrDecoded(childOf(name))
		if err != nil {
			mlog.Warn("tabular: readdir: getattr(%s) failed: %v", name, err)
			continue
		}
		entries = append(entries, DirEntry{Name: name, Attr: attr})
	}
	return entries, nil
}

func (t *Tabular) Read(ctx context.Context, path string, offset int64, size int) ([]byte, error) {
	dp, ok := DecodeTabularPath(path)
	if !ok || dp.Tag != TagColumn {
		return nil, syscall.EISDIR
	}

	cell, err := t.Mgr.GetCell(dp.Table, dp.Row, dp.Column)
	if err != nil {
		mlog.Warn("tabular: read: %v", err)
		return nil, syscall.EINTR
	}
	if cell == nil {
		return nil, syscall.ENOENT
	}
	if offset >= int64(len(cell)) {
		return []byte{}, nil
	}

	end := offset + int64(size)
	if end > int64(len(cell)) {
		end = int64(len(cell))
	}
	return cell[offset:end], nil
}

func (t *Tabular) Write(ctx context.Context, path string, offset int64, data []byte) (int, error) {
	dp, ok := DecodeTabularPath(path)
	if !ok || dp.Tag != TagColumn {
		return 0, syscall.EROFS
	}
	if offset > 0 {
		return 0, nil
	}

	if err := t.Mgr.SetCell(dp.Table, dp.Row, dp.Column, data); err != nil {
		mlog.Warn("tabular: write: %v", err)
		return 0, syscall.EINTR
	}
	return len(data), nil
}

func (t *Tabular) Mknod(ctx context.Context, path string, mode uint32) error {
	dp, ok := DecodeTabularPath(path)
	if !ok || dp.Tag != TagColumn {
		return syscall.EROFS
	}
	if err := t.Mgr.CreateColumn(dp.Table, dp.Column); err != nil {
		mlog.Warn("tabular: mknod: %v", err)
		return syscall.EINTR
	}
	return nil
}

func (t *Tabular) Rename(ctx context.Context, oldPath, newPath string) error {
	oldDP, ok1 := DecodeTabularPath(oldPath)
	newDP, ok2 := DecodeTabularPath(newPath)
	if !ok1 || !ok2 {
		return syscall.ENOENT
	}
	if oldDP.Tag != newDP.Tag {
		return syscall.ENOSPC
	}

	var err error
	switch oldDP.Tag {
	case TagDatabase:
		return syscall.EROFS
	case TagTable:
		err = t.Mgr.RenameTable(oldDP.Table, newDP.Table)
	case TagRow:
		err = t.Mgr.RenameRow(oldDP.Table, oldDP.Row, newDP.Row)
	case TagColumn:
		err = t.Mgr.RenameColumn(oldDP.Table, oldDP.Row, oldDP.Column, newDP.Column)
	}
	if err != nil {
		mlog.Warn("tabular: rename: %v", err)
		return syscall.EINTR
	}
	return nil
}

func (t *Tabular) Unlink(ctx context.Context, path string) error {
	return syscall.EROFS
}

func (t *Tabular) Mkdir(ctx context.Context, path string, mode uint32) error {
	return syscall.EROFS
}

func (t *Tabular) Rmdir(ctx context.Context, path string) error {
	dp, ok := DecodeTabularPath(path)
	if !ok {
		return syscall.ENOENT
	}
	switch dp.Tag {
	case TagColumn:
		return syscall.EINTR
	case TagDatabase:
		return syscall.EACCES
	case TagTable:
		if err := t.Mgr.RemoveTable(dp.Table); err != nil {
			mlog.Warn("tabular: rmdir: %v", err)
			return syscall.EINTR
		}
		return nil
	case TagRow:
		if err := t.Mgr.RemoveRow(dp.Table, dp.Row); err != nil {
			mlog.Warn("tabular: rmdir: %v", err)
			return syscall.EINTR
		}
		return nil
	}
	return syscall.EINTR
}
