package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/3-lines-studio/studio/internal/adapters/cli"
)

// newOutput writes to the command's streams, with colours only when those
// are the process terminal and NO_COLOR is unset.
func newOutput(cmd *cobra.Command) *cli.Output {
	if cmd.OutOrStdout() != os.Stdout || cmd.ErrOrStderr() != os.Stderr {
		return cli.NewOutputTo(cmd.OutOrStdout(), cmd.ErrOrStderr())
	}
	out := cli.NewOutput()
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		out.DisableColors()
	}
	return out
}
