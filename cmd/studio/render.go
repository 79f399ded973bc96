package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/adapters/cli"
	"github.com/3-lines-studio/studio/internal/adapters/fs"
	"github.com/3-lines-studio/studio/internal/adapters/store"
	"github.com/3-lines-studio/studio/internal/appconfig"
	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/usecase"
)

var errRenderFailures = errors.New("some components failed to render")

func newRenderCmd() *cobra.Command {
	var cfgPath string
	var pagePath string
	var outPath string
	var shell bool
	cmd := &cobra.Command{
		Use:   "render <document>",
		Short: "Render one page of a document to HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}

			// HTML owns stdout unless it goes to a file.
			reportOut := cmd.OutOrStdout()
			if outPath == "" {
				reportOut = cmd.ErrOrStderr()
			}
			output := cli.NewOutputTo(reportOut, cmd.ErrOrStderr())
			report := cli.NewRenderReport(output, args[0])

			step := report.StartStep("Load document")
			doc, err := store.NewFileStore(args[0], fs.NewOSFileSystem()).Load(ctx)
			report.EndStep(step, err)
			if err != nil {
				report.Render()
				return err
			}

			pages := usecase.NewPageService(usecase.NewRenderService(cfg.Render.RenderService()))
			step = report.StartStep("Render page " + core.NormalizePath(pagePath))
			page, err := pages.AssemblePage(ctx, doc, pagePath)
			report.EndStep(step, err)
			if err != nil {
				report.Render()
				return err
			}
			recordComponents(report, page)

			html := page.HTML()
			if shell {
				html = core.RenderHTMLShell(html, core.ShellOptions{Title: page.Page.Name, PageID: page.Page.ID})
			}
			if outPath == "" {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), html); err != nil {
					return err
				}
			} else if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}

			report.Render()
			if report.HasFailures() {
				return errRenderFailures
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVarP(&pagePath, "path", "p", "/", "page path to render")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write HTML to this file instead of stdout")
	cmd.Flags().BoolVar(&shell, "shell", false, "wrap the page in a full HTML document")
	return cmd
}

// recordComponents adds one report entry per component that did not render
// from its own source.
func recordComponents(report *cli.RenderReport, page usecase.PageRender) {
	report.SetComponentCount(len(page.Components))
	for _, c := range page.Components {
		res := c.Result
		switch {
		case res.Err != nil:
			var details []string
			if res.Err.Detail != "" {
				details = append(details, res.Err.Detail)
			}
			if res.Err.Line > 0 {
				details = append(details, fmt.Sprintf("line %d, column %d", res.Err.Line, res.Err.Col))
			}
			if res.Fallback != usecase.FallbackNone {
				details = append(details, "shown as "+string(res.Fallback))
			}
			report.AddError(componentLabel(c.Definition), fmt.Sprintf("%s failure: %s", res.Err.Kind, res.Err.Message), details...)
		case res.Fallback != usecase.FallbackNone:
			report.AddWarning(componentLabel(c.Definition), "rendered from "+string(res.Fallback))
		}
	}
}

func componentLabel(def core.ComponentDefinition) string {
	if def.Type == "" {
		return def.ID
	}
	return def.ID + " (" + def.Type + ")"
}
