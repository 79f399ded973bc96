// Package fs is the file access the store, the starter writer and the public
// asset handler go through, so each can run against disk or embedded files.
package fs

import (
	"errors"
	iofs "io/fs"
)

// ErrReadOnly is returned by writes to a file system that cannot change.
var ErrReadOnly = errors.New("file system is read-only")

// FileSystem is the subset of file operations the adapters need. Paths use
// the host separator.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	ReadDir(path string) ([]iofs.DirEntry, error)
	FileExists(path string) bool
	WriteFile(path string, data []byte, perm iofs.FileMode) error
	MkdirAll(path string, perm iofs.FileMode) error
	// Remove deletes a file or an empty directory.
	Remove(path string) error
}
