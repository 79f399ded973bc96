package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/adapters"
	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/templates"
	"github.com/3-lines-studio/studio/internal/usecase"
)

func newInitCmd() *cobra.Command {
	var template string
	var name string
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new studio project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolve project directory: %w", err)
			}

			output := newOutput(cmd)
			svc := usecase.NewInitService(fs.NewOSFileSystem(), output, adapters.NewTemplateSource())
			result := svc.InitProject(usecase.InitInput{ProjectDir: abs, Template: template, Name: name})
			if !result.Success {
				output.PrintError("%v", result.Error)
				return result.Error
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&template, "template", "t", "blank", "starter template ("+strings.Join(templates.TemplateNames(), ", ")+")")
	cmd.Flags().StringVar(&name, "name", "", "document name (defaults to the directory name)")
	return cmd
}
