package fs

import (
	"embed"
	"fmt"
	iofs "io/fs"
	"path"
	"path/filepath"
	"strings"
)

// EmbedFileSystem serves files compiled into the binary, such as a site's
// public assets. Every write fails with ErrReadOnly.
type EmbedFileSystem struct {
	files embed.FS
}

func NewEmbedFileSystem(files embed.FS) *EmbedFileSystem {
	return &EmbedFileSystem{files: files}
}

// embedPath maps a host path onto the slash separated, unrooted form embed.FS
// accepts.
func embedPath(p string) string {
	clean := path.Clean(filepath.ToSlash(p))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" {
		return "."
	}
	return clean
}

func (e *EmbedFileSystem) ReadFile(p string) ([]byte, error) {
	return e.files.ReadFile(embedPath(p))
}

func (e *EmbedFileSystem) ReadDir(p string) ([]iofs.DirEntry, error) {
	return e.files.ReadDir(embedPath(p))
}

// FileExists reports true for regular files only.
func (e *EmbedFileSystem) FileExists(p string) bool {
	info, err := iofs.Stat(e.files, embedPath(p))
	return err == nil && !info.IsDir()
}

func (e *EmbedFileSystem) WriteFile(p string, _ []byte, _ iofs.FileMode) error {
	return fmt.Errorf("write %s: %w", p, ErrReadOnly)
}

func (e *EmbedFileSystem) MkdirAll(p string, _ iofs.FileMode) error {
	return fmt.Errorf("mkdir %s: %w", p, ErrReadOnly)
}

func (e *EmbedFileSystem) Remove(p string) error {
	return fmt.Errorf("remove %s: %w", p, ErrReadOnly)
}
