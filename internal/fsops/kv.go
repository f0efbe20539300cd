package fsops

import (
	"context"
	"syscall"

	"github.com/mdbfs/mdbfs/internal/dbmanager/kv"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

// KV implements PathFS against a kv.Manager, translating the flat
// root-directory-of-records surface onto getattr/readdir/read/write and
// the mutating calls.
type KV struct {
	Mgr kv.Manager
}

func NewKV(mgr kv.Manager) *KV {
	return &KV{Mgr: mgr}
}

var _ PathFS = (*KV)(nil)

func (k *KV) Init(ctx context.Context) {}

func (k *KV) Destroy(ctx context.Context) {
	k.Mgr.Close()
}

func (k *KV) Getattr(ctx context.Context, path string) (Attr, error) {
	key, ok := DecodeKVPath(path)
	if !ok {
		return Attr{}, syscall.ENOENT
	}
	if key == "" {
		return Attr{Mode: dirMode}, nil
	}

	val, err := k.Mgr.GetRecordValue(key)
	if err != nil {
		mlog.Warn("kv: getattr: %v", err)
		return Attr{}, syscall.EINTR
	}
	if val == nil {
		return Attr{}, syscall.ENOENT
	}
	return Attr{Mode: fileMode, Size: int64(len(val))}, nil
}

func (k *KV) Readdir(ctx context.Context, path string) ([]DirEntry, error) {
	key, ok := DecodeKVPath(path)
	if !ok || key != "" {
		return nil, syscall.ENOENT
	}

	keys, err := k.Mgr.GetRecordKeys()
	if err != nil {
		mlog.Warn("kv: readdir: %v", err)
		return nil, syscall.EINTR
	}

	entries := make([]DirEntry, 0, len(keys))
	for _, name := range keys {
		if name == "" {
			continue
		}
		attr, err := k.Getattr(ctx, "/"+name)
		if err != nil {
			mlog.Warn("kv: readdir: getattr(%s) failed: %v", name, err)
			continue
		}
		entries = append(entries, DirEntry{Name: name, Attr: attr})
	}
	return entries, nil
}

func (k *KV) Read(ctx context.Context, path string, offset int64, size int) ([]byte, error) {
	key, ok := DecodeKVPath(path)
	if !ok || key == "" {
		return nil, syscall.EISDIR
	}

	val, err := k.Mgr.GetRecordValue(key)
	if err != nil {
		mlog.Warn("kv: read: %v", err)
		return nil, syscall.EINTR
	}
	if val == nil {
		return nil, syscall.ENOENT
	}
	if offset >= int64(len(val)) {
		return []byte{}, nil
	}

	end := offset + int64(size)
	if end > int64(len(val)) {
		end = int64(len(val))
	}
	return val[offset:end], nil
}

func (k *KV) Write(ctx context.Context, path string, offset int64, data []byte) (int, error) {
	key, ok := DecodeKVPath(path)
	if !ok || key == "" {
		return 0, syscall.EROFS
	}
	if offset > 0 {
		return 0, nil
	}

	if err := k.Mgr.SetRecordValue(key, data); err != nil {
		mlog.Warn("kv: write: %v", err)
		return 0, syscall.EINTR
	}
	return len(data), nil
}

func (k *KV) Mknod(ctx context.Context, path string, mode uint32) error {
	key, ok := DecodeKVPath(path)
	if !ok || key == "" {
		return syscall.EINVAL
	}
	if err := k.Mgr.CreateRecord(key); err != nil {
		mlog.Warn("kv: mknod: %v", err)
		return syscall.EINTR
	}
	return nil
}

func (k *KV) Rename(ctx context.Context, oldPath, newPath string) error {
	oldKey, ok1 := DecodeKVPath(oldPath)
	newKey, ok2 := DecodeKVPath(newPath)
	if !ok1 || !ok2 || oldKey == "" || newKey == "" {
		return syscall.EINVAL
	}

	if err := k.Mgr.RenameRecord(oldKey, newKey); err != nil {
		mlog.Warn("kv: rename: %v", err)
		return syscall.EINTR
	}
	return nil
}

func (k *KV) Unlink(ctx context.Context, path string) error {
	key, ok := DecodeKVPath(path)
	if !ok || key == "" {
		return syscall.EINVAL
	}
	if err := k.Mgr.RemoveRecord(key); err != nil {
		mlog.Warn("kv: unlink: %v", err)
		return syscall.EINTR
	}
	return nil
}

func (k *KV) Mkdir(ctx context.Context, path string, mode uint32) error {
	return syscall.EROFS
}

func (k *KV) Rmdir(ctx context.Context, path string) error {
	return syscall.EROFS
}
