// Package fusehost is the FS host binding: it adapts the backend-neutral
// fsops.PathFS operation table (§4.5 of the design) onto bazil.org/fuse's
// node/handle interfaces and drives the kernel mount loop. Every call
// received from the kernel is translated into exactly one fsops.PathFS
// method call against the active backend; there is no caching layer
// between the two, matching the "force direct I/O" init-time configuration.
package fusehost

import (
	"context"
	"syscall"

	"bazil.org/fuse"
	"bazil.org/fuse/fs"

	"github.com/mdbfs/mdbfs/internal/fsops"
	"github.com/mdbfs/mdbfs/internal/mlog"
)

// FS implements fs.FS over a single backend's operation table.
type FS struct {
	ops fsops.PathFS
}

// New wraps ops for serving over a bazil.org/fuse connection.
func New(ops fsops.PathFS) *FS {
	return &FS{ops: ops}
}

var _ fs.FS = (*FS)(nil)

func (f *FS) Root() (fs.Node, error) {
	return &node{ops: f.ops, path: "/"}, nil
}

// node represents both directories and files: the tabular and key-value
// surfaces decide what a path is from its Getattr result, not from the
// node's static type, so one struct plays both fs.Node roles.
type node struct {
	ops  fsops.PathFS
	path string
}

var _ fs.Node = (*node)(nil)
var _ fs.NodeStringLookuper = (*node)(nil)
var _ fs.HandleReadDirAller = (*node)(nil)
var _ fs.NodeCreater = (*node)(nil)
var _ fs.NodeMkdirer = (*node)(nil)
var _ fs.NodeMknoder = (*node)(nil)
var _ fs.NodeRemover = (*node)(nil)
var _ fs.NodeRenamer = (*node)(nil)
var _ fs.NodeOpener = (*node)(nil)
var _ fs.HandleReader = (*node)(nil)
var _ fs.HandleWriter = (*node)(nil)

func join(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}

func (n *node) Attr(ctx context.Context, a *fuse.Attr) error {
	attr, err := n.ops.Getattr(ctx, n.path)
	if err != nil {
		return err
	}
	a.Mode = attr.Mode
	a.Size = uint64(attr.Size)
	// Inode numbering is disabled (spec §4.5 Init): leave a.Inode at its
	// zero value and let the kernel generate one.
	return nil
}

func (n *node) Lookup(ctx context.Context, name string) (fs.Node, error) {
	childPath := join(n.path, name)
	if _, err := n.ops.Getattr(ctx, childPath); err != nil {
		return nil, err
	}
	return &node{ops: n.ops, path: childPath}, nil
}

func (n *node) ReadDirAll(ctx context.Context) ([]fuse.Dirent, error) {
	entries, err := n.ops.Readdir(ctx, n.path)
	if err != nil {
		return nil, err
	}

	dirents := make([]fuse.Dirent, 0, len(entries))
	for _, e := range entries {
		d := fuse.Dirent{Name: e.Name}
		if e.Attr.Mode.IsDir() {
			d.Type = fuse.DT_Dir
		} else {
			d.Type = fuse.DT_File
		}
		dirents = append(dirents, d)
	}
	return dirents, nil
}

// Create implements fs.NodeCreater via Mknod; mdbfs has no distinct
// file-creation call, so a failed create returns whatever Mknod
// returned (EROFS on a non-column tabular path, EINVAL on a non-key kv
// path).
func (n *node) Create(ctx context.Context, req *fuse.CreateRequest, resp *fuse.CreateResponse) (fs.Node, fs.Handle, error) {
	childPath := join(n.path, req.Name)
	if err := n.ops.Mknod(ctx, childPath, uint32(req.Mode)); err != nil {
		return nil, nil, err
	}
	child := &node{ops: n.ops, path: childPath}
	return child, child, nil
}

func (n *node) Mknod(ctx context.Context, req *fuse.MknodRequest) (fs.Node, error) {
	childPath := join(n.path, req.Name)
	if err := n.ops.Mknod(ctx, childPath, uint32(req.Mode)); err != nil {
		return nil, err
	}
	return &node{ops: n.ops, path: childPath}, nil
}

func (n *node) Mkdir(ctx context.Context, req *fuse.MkdirRequest) (fs.Node, error) {
	childPath := join(n.path, req.Name)
	if err := n.ops.Mkdir(ctx, childPath, uint32(req.Mode)); err != nil {
		return nil, err
	}
	return &node{ops: n.ops, path: childPath}, nil
}

// Remove dispatches to Rmdir or Unlink depending on what the kernel
// believes it is removing, and returns that call's result unchanged.
func (n *node) Remove(ctx context.Context, req *fuse.RemoveRequest) error {
	childPath := join(n.path, req.Name)
	if req.Dir {
		return n.ops.Rmdir(ctx, childPath)
	}
	return n.ops.Unlink(ctx, childPath)
}

func (n *node) Rename(ctx context.Context, req *fuse.RenameRequest, newDir fs.Node) error {
	newParent, ok := newDir.(*node)
	if !ok {
		return syscall.EINVAL
	}
	oldPath := join(n.path, req.OldName)
	newPath := join(newParent.path, req.NewName)
	return n.ops.Rename(ctx, oldPath, newPath)
}

// Open always serves the node itself as the handle: there is no
// separate open/read/write state to track since every read or write
// goes straight to the database on each call.
func (n *node) Open(ctx context.Context, req *fuse.OpenRequest, resp *fuse.OpenResponse) (fs.Handle, error) {
	resp.Flags |= fuse.OpenDirectIO
	return n, nil
}

func (n *node) Read(ctx context.Context, req *fuse.ReadRequest, resp *fuse.ReadResponse) error {
	data, err := n.ops.Read(ctx, n.path, req.Offset, req.Size)
	if err != nil {
		return err
	}
	resp.Data = data
	return nil
}

func (n *node) Write(ctx context.Context, req *fuse.WriteRequest, resp *fuse.WriteResponse) error {
	written, err := n.ops.Write(ctx, n.path, req.Offset, req.Data)
	if err != nil {
		return err
	}
	resp.Size = written
	return nil
}

// Mount registers ops with the kernel under mountpoint and serves until
// the mount is torn down or the process exits. The caller must already
// have opened the database handle ops talks to. Mount calls ops.Init
// once after a successful mount and ops.Destroy once the kernel stops
// asking for operations.
func Mount(mountpoint string, ops fsops.PathFS, fsName string) error {
	c, err := fuse.Mount(
		mountpoint,
		fuse.FSName(fsName),
		fuse.Subtype("mdbfs"),
	)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := context.Background()
	ops.Init(ctx)
	defer ops.Destroy(ctx)

	mlog.Info("mounted %s at %s", fsName, mountpoint)

	if err := fs.Serve(c, New(ops)); err != nil {
		return err
	}

	<-c.Ready
	if err := c.MountError; err != nil {
		return err
	}
	return nil
}
