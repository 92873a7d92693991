package main

import (
	"github.com/spf13/cobra"
)

type rootFlags struct {
	verbose    bool
	configPath string
}

func newRootCmd(app *AppContext) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "inkwell",
		Short:         "Inkwell evaluates manuscripts through a series of editorial stages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to configuration file (default ./inkwell.yaml when present)")

	cmd.AddCommand(newEvaluateCmd(flags, app))
	cmd.AddCommand(newStagesCmd(flags, app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}
