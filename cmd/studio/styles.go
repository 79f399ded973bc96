package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/style"
)

func newStylesCmd() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "styles key=value...",
		Short: "Map style attributes to class tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if list {
				for _, category := range style.Categories() {
					fmt.Fprintln(out, category)
				}
				return nil
			}
			styles, err := parseStyleArgs(args)
			if err != nil {
				return err
			}
			res := style.Resolve(styles)
			fmt.Fprintf(out, "class: %s\n", res.ClassTokens)
			if css := style.InlineCSS(res.Residual); css != "" {
				fmt.Fprintf(out, "style: %s\n", css)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list the style keys that map to tokens")
	return cmd
}

func parseStyleArgs(args []string) (core.StyleMap, error) {
	styles := core.StyleMap{}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid style %q; expected key=value", arg)
		}
		styles[strings.TrimSpace(key)] = value
	}
	return styles, nil
}
