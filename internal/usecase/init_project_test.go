package usecase

import (
	"encoding/json"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/templates"
)

type quietOutput struct {
	files []string
	done  []string
}

func (q *quietOutput) PrintHeader(string)               {}
func (q *quietOutput) PrintStep(string, string, ...any) {}
func (q *quietOutput) PrintSuccess(string, ...any)      {}
func (q *quietOutput) PrintWarning(string, ...any)      {}
func (q *quietOutput) PrintError(string, ...any)        {}
func (q *quietOutput) PrintFile(path string)            { q.files = append(q.files, path) }
func (q *quietOutput) PrintDone(msg string)             { q.done = append(q.done, msg) }

type starterTemplates struct{}

func (starterTemplates) GetTemplate(name string) (iofs.FS, error) { return templates.GetTemplate(name) }

func TestInitProject(t *testing.T) {
	for _, name := range templates.TemplateNames() {
		t.Run(name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "my-site")
			out := &quietOutput{}
			svc := NewInitService(fs.NewOSFileSystem(), out, starterTemplates{})
			svc.newID = func() string { return "doc-fixed" }

			res := svc.InitProject(InitInput{ProjectDir: dir, Template: name})
			if !res.Success {
				t.Fatalf("InitProject() error = %v", res.Error)
			}
			if res.DocumentID != "doc-fixed" {
				t.Errorf("DocumentID = %q, want doc-fixed", res.DocumentID)
			}

			for _, file := range []string{"document.json", "studio.yaml", ".env.example"} {
				if _, err := os.Stat(filepath.Join(dir, file)); err != nil {
					t.Errorf("expected %s to be created: %v", file, err)
				}
			}

			data, err := os.ReadFile(filepath.Join(dir, "document.json"))
			if err != nil {
				t.Fatal(err)
			}
			var doc core.Document
			if err := json.Unmarshal(data, &doc); err != nil {
				t.Fatalf("document.json does not decode: %v", err)
			}
			if doc.ID != "doc-fixed" || doc.Name != "my-site" {
				t.Errorf("document id/name = %q/%q, want doc-fixed/my-site", doc.ID, doc.Name)
			}
			if len(out.files) != len(res.Files) {
				t.Errorf("printed %d files, created %d", len(out.files), len(res.Files))
			}
		})
	}
}

func TestInitProjectRejectsNonEmptyDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	svc := NewInitService(fs.NewOSFileSystem(), &quietOutput{}, starterTemplates{})

	res := svc.InitProject(InitInput{ProjectDir: dir, Template: "blank"})
	if res.Success || res.Error == nil {
		t.Fatal("expected failure for non-empty directory")
	}
	if !strings.Contains(res.Error.Error(), "not empty") {
		t.Errorf("error = %v, want not empty", res.Error)
	}
}

func TestInitProjectUnknownTemplate(t *testing.T) {
	svc := NewInitService(fs.NewOSFileSystem(), &quietOutput{}, starterTemplates{})

	res := svc.InitProject(InitInput{ProjectDir: filepath.Join(t.TempDir(), "x"), Template: "nope"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if !strings.Contains(res.Error.Error(), "invalid template 'nope'") {
		t.Errorf("error = %v", res.Error)
	}
}
