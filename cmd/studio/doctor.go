package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/adapters/cli"
	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/adapters/store"
	"github.com/3-lines-studio/studio/internal/appconfig"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/usecase"
)

var errDoctorFailed = errors.New("document has problems")

func newDoctorCmd() *cobra.Command {
	var cfgPath string
	var fix bool
	cmd := &cobra.Command{
		Use:   "doctor <document>",
		Short: "Check a document and render every page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			output := newOutput(cmd)
			output.PrintHeader("Studio Doctor")

			source := store.NewFileStore(args[0], fs.NewOSFileSystem())
			doc, err := source.Load(ctx)
			if err != nil {
				output.PrintError("%v", err)
				return err
			}

			if fix {
				if repaired, changed := core.RepairHomePages(doc); changed {
					if err := source.SaveHomePages(ctx, repaired); err != nil {
						return err
					}
					output.PrintSuccess("Kept a single home page")
					doc = repaired
				}
			}

			failed := false
			for _, issue := range core.Validate(doc) {
				msg := issue.Message
				if issue.Page != "" {
					msg = issue.Page + ": " + msg
				}
				if issue.Severity == core.SeverityError {
					failed = true
					output.PrintError("%s", msg)
				} else {
					output.PrintWarning("%s", msg)
				}
			}

			report := cli.NewRenderReport(output, args[0])
			pages := usecase.NewPageService(usecase.NewRenderService(cfg.Render.RenderService()))
			total := 0
			for _, p := range doc.Pages {
				step := report.StartStep("Render page " + core.NormalizePath(p.Path))
				page, err := pages.AssemblePage(ctx, doc, p.Path)
				report.EndStep(step, err)
				if err != nil {
					continue
				}
				recordComponents(report, page)
				total += len(page.Components)
			}
			report.SetComponentCount(total)
			report.Render()

			if failed || report.HasFailures() {
				return errDoctorFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().BoolVar(&fix, "fix", false, "repair problems that have a safe fix")
	return cmd
}
