package fs

import (
	"embed"
	"errors"
	"testing"
)

//go:embed testdata
var testFiles embed.FS

func TestEmbedFileSystemPaths(t *testing.T) {
	fsys := NewEmbedFileSystem(testFiles)

	tests := []struct {
		path   string
		exists bool
	}{
		{path: "testdata/public/site.css", exists: true},
		{path: "/testdata/public/site.css", exists: true},
		{path: "testdata/public/../public/site.css", exists: true},
		{path: "testdata/public", exists: false},
		{path: "testdata/public/missing.css", exists: false},
	}
	for _, tt := range tests {
		if got := fsys.FileExists(tt.path); got != tt.exists {
			t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.exists)
		}
	}

	data, err := fsys.ReadFile("/testdata/public/site.css")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "body { margin: 0; }\n" {
		t.Errorf("ReadFile() = %q", data)
	}

	entries, err := fsys.ReadDir("testdata/public")
	if err != nil || len(entries) != 1 || entries[0].Name() != "site.css" {
		t.Errorf("ReadDir() = %v, %v", entries, err)
	}
}

func TestEmbedFileSystemReadOnly(t *testing.T) {
	fsys := NewEmbedFileSystem(testFiles)
	for name, err := range map[string]error{
		"WriteFile": fsys.WriteFile("x.txt", []byte("x"), 0o644),
		"MkdirAll":  fsys.MkdirAll("dir", 0o755),
		"Remove":    fsys.Remove("testdata/public/site.css"),
	} {
		if !errors.Is(err, ErrReadOnly) {
			t.Errorf("%s() error = %v, want ErrReadOnly", name, err)
		}
	}
}
