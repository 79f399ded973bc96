package http

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/core"
)

// PublicHandler serves files under the project's public directory, so image
// properties can point at local files. Anything else goes to next.
type PublicHandler struct {
	fs   fs.FileSystem
	root string
	next http.Handler
}

func NewPublicHandler(fsys fs.FileSystem, root string, next http.Handler) http.Handler {
	return &PublicHandler{
		fs:   fsys,
		root: root,
		next: next,
	}
}

func (h *PublicHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	clean := strings.TrimPrefix(path.Clean("/"+req.URL.Path), "/")
	if clean == "" || (req.Method != http.MethodGet && req.Method != http.MethodHead) {
		h.next.ServeHTTP(w, req)
		return
	}

	full := filepath.Join(h.root, filepath.FromSlash(clean))
	if !h.fs.FileExists(full) {
		h.next.ServeHTTP(w, req)
		return
	}

	data, err := h.fs.ReadFile(full)
	if err != nil {
		// directories and unreadable files
		h.next.ServeHTTP(w, req)
		return
	}

	etag := `"` + core.HashContent(data) + `"`
	w.Header().Set("ETag", etag)
	if req.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", core.GetContentType(clean))
	if req.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(data)
}
