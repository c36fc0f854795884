package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/ingest"
	"github.com/matzehuels/critpath/pkg/pipeline"
	"github.com/matzehuels/critpath/pkg/suggest"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

// analysisFlags are shared by analyze and suggest.
type analysisFlags struct {
	inputFormat string
	maxDeps     int
	threshold   float64
	hoursPerDay float64
	noCache     bool
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.inputFormat, "input-format", "", "input format when reading stdin: csv or json")
	cmd.Flags().IntVar(&f.maxDeps, "max-deps", 0, "flag tasks with more than this many dependencies")
	cmd.Flags().Float64Var(&f.threshold, "threshold", 0, "flag tasks longer than this many hours")
	cmd.Flags().Float64Var(&f.hoursPerDay, "hours-per-day", 0, "hours in a working day, for day-based CSV files")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options builds pipeline options for path ("-" for stdin), with flags
// overriding the configuration.
func (c *CLI) options(cmd *cobra.Command, f *analysisFlags, path string) (pipeline.Options, error) {
	opts := pipeline.Options{
		Parse:        c.Config.ParseOptions(),
		Bottleneck:   c.Config.BottleneckOptions(),
		SuggestLimit: c.Config.Suggest.Limit,
	}
	if cmd.Flags().Changed("max-deps") {
		if f.maxDeps < 1 {
			return opts, fmt.Errorf("--max-deps must be at least 1, got %d", f.maxDeps)
		}
		opts.Bottleneck.MaxDependencies = f.maxDeps
	}
	if cmd.Flags().Changed("threshold") {
		if f.threshold <= 0 {
			return opts, fmt.Errorf("--threshold must be positive, got %v", f.threshold)
		}
		opts.Bottleneck.ThresholdHours = f.threshold
	}
	if cmd.Flags().Changed("hours-per-day") {
		if f.hoursPerDay <= 0 {
			return opts, fmt.Errorf("--hours-per-day must be positive, got %v", f.hoursPerDay)
		}
		opts.Parse.HoursPerDay = f.hoursPerDay
	}

	if path != "-" {
		opts.Path = path
		return opts, nil
	}
	format := ingest.Format(f.inputFormat)
	switch format {
	case ingest.FormatCSV, ingest.FormatJSON:
	case "":
		format = ingest.FormatJSON
	default:
		return opts, fmt.Errorf("unknown input format %q (want csv or json)", f.inputFormat)
	}
	opts.Reader, opts.Format = cmd.InOrStdin(), format
	return opts, nil
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags        analysisFlags
		format       string
		output       string
		doSuggest    bool
		limit        int
		storeInCache bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Find the critical path and bottlenecks of a task list",
		Long: `Analyze reads a CSV or JSON task list and reports the critical path,
bottleneck tasks and workload per owner.

Use "-" to read from stdin (JSON unless --input-format csv).`,
		Example: `  critpath analyze plan.csv
  critpath analyze plan.json --format json -o result.json
  critpath analyze plan.csv --suggest --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != outputTable && format != outputJSON {
				return fmt.Errorf("unknown output format %q (want table or json)", format)
			}
			opts, err := c.options(cmd, &flags, args[0])
			if err != nil {
				return err
			}
			opts.Suggest = doSuggest
			if cmd.Flags().Changed("limit") {
				if limit < 1 {
					return fmt.Errorf("--limit must be at least 1, got %d", limit)
				}
				opts.SuggestLimit = limit
			}
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, analyzeRun{
				noCache: flags.noCache,
				format:  format,
				output:  output,
				store:   storeInCache,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", outputTable, "output format: table or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().BoolVarP(&doSuggest, "suggest", "s", false, "fetch mitigation suggestions for the top bottlenecks")
	cmd.Flags().IntVar(&limit, "limit", suggest.DefaultLimit, "number of bottlenecks to fetch suggestions for")
	cmd.Flags().BoolVar(&storeInCache, "store", false, "store the result in the cache so the server can return it by id")

	return cmd
}

type analyzeRun struct {
	noCache bool
	format  string
	output  string
	store   bool
}

func (c *CLI) runAnalyze(ctx context.Context, stdout io.Writer, opts pipeline.Options, run analyzeRun) error {
	runner, store, err := c.newRunner(ctx, run.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.Suggest && !suggest.Configured(runner.Suggester) {
		c.Logger.Warnf("suggestions disabled: set %s or suggest.api_key", c.Config.Suggest.APIKeyEnv)
		opts.Suggest = false
	}

	var spin *Spinner
	if opts.Suggest && run.format == outputTable && run.output == "" {
		spin = newSpinner(ctx, "Fetching suggestions...")
		spin.Start()
	}
	prog := newProgress(c.Logger)
	out, err := runner.Execute(ctx, opts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analyzed %d tasks", len(out.Result.Tasks)))

	for _, sk := range out.Skipped {
		c.Logger.Debug("skipped", "record", sk.String())
	}
	if run.store {
		if err := runner.StoreResult(ctx, out.Result, c.Config.Server.ResultTTL.Std()); err != nil {
			return err
		}
		c.Logger.Info("stored result", "id", out.Result.ID)
	}

	w := stdout
	if run.output != "" {
		f, err := os.Create(run.output)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch run.format {
	case outputJSON:
		err = ingest.WriteJSON(w, out)
	default:
		err = writeReport(w, out.Result, out.Suggestions)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if run.output != "" {
		printSuccess("Wrote %s report", run.format)
		printFile(run.output)
	}
	if !opts.Suggest && len(out.Result.Bottlenecks) > 0 && run.format == outputTable && run.output == "" {
		printNextStep("Ask for mitigation ideas", "critpath suggest "+displayPath(opts)+" -i")
	}
	return nil
}

func displayPath(opts pipeline.Options) string {
	if opts.Path == "" {
		return "<file>"
	}
	return opts.Path
}
