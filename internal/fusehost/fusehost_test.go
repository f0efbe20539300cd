package fusehost

import (
	"context"
	"os"
	"syscall"
	"testing"

	"bazil.org/fuse"

	"github.com/mdbfs/mdbfs/internal/fsops"
)

// fakeFS is a minimal fsops.PathFS backed by a map, standing in for a
// real backend so node's translation to bazil.org/fuse calls can be
// tested without a kernel mount.
type fakeFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{
		files: map[string][]byte{"/hello": []byte("world")},
		dirs:  map[string]bool{"/": true},
	}
}

var _ fsops.PathFS = (*fakeFS)(nil)

func (f *fakeFS) Init(ctx context.Context)    {}
func (f *fakeFS) Destroy(ctx context.Context) {}

func (f *fakeFS) Getattr(ctx context.Context, path string) (fsops.Attr, error) {
	if f.dirs[path] {
		return fsops.Attr{Mode: os.FileMode(0o755) | os.ModeDir}, nil
	}
	if data, ok := f.files[path]; ok {
		return fsops.Attr{Mode: 0o644, Size: int64(len(data))}, nil
	}
	return fsops.Attr{}, syscall.ENOENT
}

func (f *fakeFS) Readdir(ctx context.Context, path string) ([]fsops.DirEntry, error) {
	if !f.dirs[path] {
		return nil, syscall.ENOENT
	}
	var entries []fsops.DirEntry
	for p, data := range f.files {
		entries = append(entries, fsops.DirEntry{
			Name: p[1:],
			Attr: fsops.Attr{Mode: 0o644, Size: int64(len(data))},
		})
	}
	return entries, nil
}

func (f *fakeFS) Read(ctx context.Context, path string, offset int64, size int) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, syscall.ENOENT
	}
	if offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + int64(size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (f *fakeFS) Write(ctx context.Context, path string, offset int64, data []byte) (int, error) {
	f.files[path] = append([]byte{}, data...)
	return len(data), nil
}

func (f *fakeFS) Mknod(ctx context.Context, path string, mode uint32) error {
	f.files[path] = []byte{}
	return nil
}

func (f *fakeFS) Rename(ctx context.Context, oldPath, newPath string) error {
	data, ok := f.files[oldPath]
	if !ok {
		return syscall.ENOENT
	}
	delete(f.files, oldPath)
	f.files[newPath] = data
	return nil
}

func (f *fakeFS) Unlink(ctx context.Context, path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeFS) Mkdir(ctx context.Context, path string, mode uint32) error {
	return syscall.EROFS
}

func (f *fakeFS) Rmdir(ctx context.Context, path string) error {
	return syscall.EROFS
}

func TestNodeAttrFile(t *testing.T) {
	n := &node{ops: newFakeFS(), path: "/hello"}
	var a fuse.Attr
	if err := n.Attr(context.Background(), &a); err != nil {
		t.Fatalf("Attr: %v", err)
	}
	if a.Size != 5 {
		t.Errorf("Size = %d, want 5", a.Size)
	}
	if a.Mode.IsDir() {
		t.Errorf("Mode should not be a directory")
	}
}

func TestNodeLookupMissing(t *testing.T) {
	n := &node{ops: newFakeFS(), path: "/"}
	if _, err := n.Lookup(context.Background(), "nope"); err != syscall.ENOENT {
		t.Errorf("Lookup(nope) = %v, want ENOENT", err)
	}
}

func TestNodeReadWriteRoundTrip(t *testing.T) {
	ops := newFakeFS()
	n := &node{ops: ops, path: "/hello"}

	req := &fuse.WriteRequest{Data: []byte("bob")}
	var wresp fuse.WriteResponse
	if err := n.Write(context.Background(), req, &wresp); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if wresp.Size != 3 {
		t.Errorf("Write size = %d, want 3", wresp.Size)
	}

	rreq := &fuse.ReadRequest{Offset: 0, Size: 10}
	var rresp fuse.ReadResponse
	if err := n.Read(context.Background(), rreq, &rresp); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(rresp.Data) != "bob" {
		t.Errorf("Read = %q, want %q", rresp.Data, "bob")
	}
}

func TestNodeRemoveDispatchesByDirFlag(t *testing.T) {
	ops := newFakeFS()
	n := &node{ops: ops, path: "/"}

	if err := n.Remove(context.Background(), &fuse.RemoveRequest{Name: "hello", Dir: false}); err != nil {
		t.Fatalf("Remove(file): %v", err)
	}
	if _, ok := ops.files["/hello"]; ok {
		t.Errorf("file /hello should have been removed")
	}

	if err := n.Remove(context.Background(), &fuse.RemoveRequest{Name: "sub", Dir: true}); err != syscall.EROFS {
		t.Errorf("Remove(dir) = %v, want EROFS", err)
	}
}

func TestNodeRename(t *testing.T) {
	ops := newFakeFS()
	n := &node{ops: ops, path: "/"}

	err := n.Rename(context.Background(), &fuse.RenameRequest{OldName: "hello", NewName: "renamed"}, n)
	if err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, ok := ops.files["/renamed"]; !ok {
		t.Errorf("expected /renamed to exist after rename")
	}
}

func TestJoin(t *testing.T) {
	if got := join("/", "a"); got != "/a" {
		t.Errorf("join(/, a) = %q, want /a", got)
	}
	if got := join("/a", "b"); got != "/a/b" {
		t.Errorf("join(/a, b) = %q, want /a/b", got)
	}
}
