package usecase

import (
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/3-lines-studio/studio/internal/templates"
)

// TemplateProvider hands out the starter file trees.
type TemplateProvider interface {
	GetTemplate(name string) (iofs.FS, error)
}

type InitInput struct {
	ProjectDir string
	Template   string
	Name       string
}

type InitOutput struct {
	Success    bool
	DocumentID string
	Files      []string
	Error      error
}

type InitService struct {
	fs        FileSystem
	cli       CLIOutput
	templates TemplateProvider
	newID     func() string
}

func NewInitService(fs FileSystem, cli CLIOutput, templates TemplateProvider) *InitService {
	return &InitService{
		fs:        fs,
		cli:       cli,
		templates: templates,
		newID:     uuid.NewString,
	}
}

func (s *InitService) InitProject(input InitInput) InitOutput {
	s.cli.PrintHeader("Studio Init")

	if s.fs.FileExists(input.ProjectDir) {
		entries, err := s.fs.ReadDir(input.ProjectDir)
		if err != nil {
			return InitOutput{
				Success: false,
				Error:   fmt.Errorf("failed to read directory: %w", err),
			}
		}

		hasFiles := false
		for _, entry := range entries {
			if entry.Name() != "." && entry.Name() != ".." {
				hasFiles = true
				break
			}
		}

		if hasFiles {
			return InitOutput{
				Success: false,
				Error:   fmt.Errorf("directory '%s' is not empty", input.ProjectDir),
			}
		}
	}

	name := input.Template
	if name == "" {
		name = "blank"
	}
	starter, err := s.templates.GetTemplate(name)
	if err != nil {
		if errors.Is(err, templates.ErrInvalidTemplate) {
			err = fmt.Errorf("invalid template '%s'", name)
		}
		return InitOutput{Success: false, Error: err}
	}

	if err := s.fs.MkdirAll(input.ProjectDir, 0755); err != nil {
		return InitOutput{
			Success: false,
			Error:   fmt.Errorf("failed to create project directory: %w", err),
		}
	}

	data := templates.TemplateData{
		ID:   s.newID(),
		Name: input.Name,
	}
	if data.Name == "" {
		data.Name = templates.DeriveDocumentName(input.ProjectDir)
	}

	out := InitOutput{DocumentID: data.ID}
	err = iofs.WalkDir(starter, ".", func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return s.fs.MkdirAll(filepath.Join(input.ProjectDir, path), 0755)
		}

		content, err := iofs.ReadFile(starter, path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}

		target, isTemplate := templates.ProcessFilename(path, data)
		target = filepath.Join(input.ProjectDir, target)
		if err := s.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(target), err)
		}
		if err := s.fs.WriteFile(target, templates.ProcessContent(content, isTemplate, data), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", target, err)
		}

		if isTemplate {
			s.cli.PrintFile(target + " (generated)")
		} else {
			s.cli.PrintFile(target)
		}
		out.Files = append(out.Files, target)
		return nil
	})
	if err != nil {
		for _, file := range out.Files {
			_ = s.fs.Remove(file)
		}
		return InitOutput{Success: false, Error: err}
	}

	s.cli.PrintDone(fmt.Sprintf("Created %d files using '%s' template", len(out.Files), name))
	out.Success = true
	return out
}
