package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/panel"
	"github.com/3-lines-studio/studio/internal/props"
)

func newExtractCmd() *cobra.Command {
	var fields bool
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Print the property schema recovered from component source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}

			res := props.Analyze(source)
			log := logx.Ctx(cmd.Context())
			if res.Err != nil {
				log.Debug("definition block unreadable", "tier", res.Tier, "err", res.Err)
			} else {
				log.Debug("schema extracted", "tier", res.Tier, "mode", res.Mode.String())
			}

			var out any = res.Schema
			if fields {
				out = panel.Fields(res.Schema)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&fields, "fields", false, "print editing panel fields instead of the schema")
	return cmd
}

func readSource(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
