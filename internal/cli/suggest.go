package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/ingest"
	"github.com/matzehuels/critpath/pkg/suggest"
)

// suggestCommand creates the suggest command.
func (c *CLI) suggestCommand() *cobra.Command {
	var (
		flags       analysisFlags
		taskID      int
		interactive bool
		limit       int
		asJSON      bool
	)

	cmd := &cobra.Command{
		Use:   "suggest <file>",
		Short: "Ask the LLM how to unblock bottleneck tasks",
		Long: `Suggest analyzes the task list, then asks the configured provider for
mitigation strategies. Without --task or -i it asks about the top
bottlenecks.`,
		Example: `  critpath suggest plan.csv
  critpath suggest plan.csv --task 4
  critpath suggest plan.csv -i`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				if limit < 1 {
					return fmt.Errorf("--limit must be at least 1, got %d", limit)
				}
				opts.SuggestLimit = limit
			}

			runner, store, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer store.Close()
			if !suggest.Configured(runner.Suggester) {
				return suggest.ErrNotConfigured
			}

			out, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			res := out.Result

			switch {
			case interactive:
				t, ok, err := pickTask(res)
				if err != nil {
					return err
				}
				if !ok {
					printInfo("No task selected")
					return nil
				}
				c.Logger.Debug("selected", "task", taskLabel(t))
				opts.SuggestTaskID = t.ID
			case taskID != 0:
				opts.SuggestTaskID = taskID
			case len(res.Bottlenecks) == 0:
				printSuccess("No bottlenecks found")
				printDetail("Use --task or -i to ask about a specific task")
				return nil
			}

			spin := newSpinner(ctx, fmt.Sprintf("Asking %s...", runner.Suggester.Name()))
			spin.Start()
			sugs, err := runner.Suggest(ctx, res, opts)
			spin.Stop()
			if err != nil {
				return err
			}

			if asJSON {
				return ingest.WriteJSON(cmd.OutOrStdout(), sugs)
			}
			failed := 0
			for _, s := range sugs {
				if s.Failed() {
					failed++
				}
			}
			if _, err := fmt.Fprint(cmd.OutOrStdout(), renderSuggestions(sugs)); err != nil {
				return err
			}
			if len(sugs) > 0 && failed == len(sugs) {
				printError("All %d suggestion requests failed", failed)
				return sugs[0].Err
			}
			if failed > 0 {
				printWarning("%d of %d suggestion requests failed", failed, len(sugs))
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&taskID, "task", "t", 0, "task id to ask about")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick the task interactively")
	cmd.Flags().IntVar(&limit, "limit", suggest.DefaultLimit, "number of bottlenecks to ask about")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print suggestions as JSON")
	cmd.MarkFlagsMutuallyExclusive("task", "interactive")

	return cmd
}
