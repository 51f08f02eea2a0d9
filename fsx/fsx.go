/*
Package fsx provides the small filesystem abstraction used by the conversion
pipeline.

Every file the pipeline touches, source images, configuration files,
intermediate output of the external converter and generated artifacts, is
accessed through FS so that staleness decisions can be made from both the
modification and the change time of a file.
*/
package fsx

import (
	"time"
)

// FileInfo describes a file as seen by the staleness tracker.
type FileInfo struct {
	Name       string
	Size       int64
	IsDir      bool
	ModTime    time.Time
	ChangeTime time.Time
}

// Newest returns the later of the modification and change times.
func (fi FileInfo) Newest() time.Time {
	if fi.ChangeTime.After(fi.ModTime) {
		return fi.ChangeTime
	}
	return fi.ModTime
}

// FS is the set of filesystem operations the pipeline needs.
type FS interface {
	ReadFile(name string) ([]byte, error)
	// WriteFile creates any missing parent directories.
	WriteFile(name string, data []byte) error
	Exists(name string) bool
	Stat(name string) (FileInfo, error)
	Remove(name string) error
	MkdirTemp(dir, pattern string) (string, error)
	RemoveAll(name string) error
}

// Finder locates files beneath a root whose base name matches a
// filepath.Match pattern.
type Finder interface {
	Find(root, pattern string) ([]string, error)
}
