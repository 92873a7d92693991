package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/infrastructure/document"
)

func newStagesCmd(root *rootFlags, app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "List the evaluation stages and accepted documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Init(root); err != nil {
				return err
			}
			ctx, logger := app.CommandContext(cmd, "command.stages")
			logger.Debug(ctx, "listing stages")

			settings := app.Config.Settings
			policy := document.Policy{Extensions: settings.Extensions(), MaxSize: int64(settings.MaxFileSize)}
			printStages(cmd.OutOrStdout(), evaluation.DefaultCatalog(), policy, app.Config.Evaluator.Provider)
			return nil
		},
	}
}

func printStages(w io.Writer, catalog evaluation.Catalog, policy document.Policy, provider string) {
	fmt.Fprintln(w, "\nEvaluation Stages:")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "%-3s %-22s %-26s %s\n", "#", "ID", "Name", "Focus")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for i, stage := range catalog {
		fmt.Fprintf(w, "%-3d %-22s %-26s %s\n", i+1, stage.ID, stage.Name, stage.Description)
	}
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintf(w, "Accepted documents: %s\n", policy.Describe())
	fmt.Fprintf(w, "Evaluator provider: %s\n", provider)
}
