package fusehost

// This file documents the bazil.org/fuse interfaces node implements.
// See https://pkg.go.dev/bazil.org/fuse/fs for the full interface set;
// mdbfs intentionally implements a small subset because spec.md's
// filesystem operation layer has no notion of permissions, extended
// attributes, symlinks, or partial-write buffering (§1 Non-goals).
//
// Implemented:
//   fs.FS                 (FS.Root)
//   fs.Node                (node.Attr)
//   fs.NodeStringLookuper  (node.Lookup)
//   fs.HandleReadDirAller  (node.ReadDirAll)
//   fs.NodeCreater         (node.Create, via Mknod)
//   fs.NodeMknoder         (node.Mknod)
//   fs.NodeMkdirer         (node.Mkdir — always EROFS, per spec.md §4.5)
//   fs.NodeRemover         (node.Remove, dispatches Rmdir/Unlink)
//   fs.NodeRenamer         (node.Rename)
//   fs.NodeOpener          (node.Open — returns the node itself)
//   fs.HandleReader        (node.Read)
//   fs.HandleWriter        (node.Write)
//
// Not implemented: symlinks, hard links, extended attributes, Setattr
// (chmod/chown/truncate), Statfs, Flush/Fsync/Release. None of these
// have a corresponding operation in spec.md's filesystem operation
// layer; the kernel sees them as unsupported (EOPNOTSUPP) rather than
// silently accepted.
