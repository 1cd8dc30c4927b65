// Package fileutil holds the small filesystem helpers the supervisor needs to
// materialize ZooKeeper's on-disk artifacts: recursive directory creation,
// best-effort removal, existence checks and WriteFile, which supports explicit
// permissions, fsync and atomic temp-file-then-rename writes so ZooKeeper never
// reads a half-written zoo.cfg.
package fileutil
