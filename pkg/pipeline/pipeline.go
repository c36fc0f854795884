// Package pipeline runs the ingest → analyze → suggest sequence shared by
// the CLI and the HTTP API.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, suggester, logger)
//	out, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "tasks.csv",
//	    Suggest: true,
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(out.Result.CriticalPathIDs)
//
// Input comes from exactly one of Options.Path, Options.Reader or
// Options.Tasks. Rows the parser had to drop are logged at warn level and
// returned in [Output.Skipped]; only structurally invalid input fails.
package pipeline

import (
	"io"
	"time"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/bottleneck"
	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/ingest"
	"github.com/matzehuels/critpath/pkg/suggest"
	"github.com/matzehuels/critpath/pkg/task"
)

// Options configures one pipeline run.
type Options struct {
	// Input: Path, Reader (with Format) or Tasks.
	Path   string
	Reader io.Reader
	Format ingest.Format
	Tasks  []task.Task

	Parse      task.ParseOptions
	Bottleneck bottleneck.Options

	// MaxTasks rejects larger plans with INVALID_INPUT when positive.
	MaxTasks int
	// Timeout bounds the analysis stage when positive.
	Timeout time.Duration

	// Suggest requests suggestions for the first SuggestLimit bottlenecks.
	Suggest      bool
	SuggestLimit int
	// SuggestTaskID, when non-zero, requests a suggestion for that task
	// only, bottleneck or not.
	SuggestTaskID int
}

// Validate checks that exactly one input is set.
func (o Options) Validate() error {
	n := 0
	if o.Path != "" {
		n++
	}
	if o.Reader != nil {
		n++
		if o.Format == "" {
			return errors.New(errors.ErrCodeInvalidFormat, "reader input needs a format")
		}
	}
	if o.Tasks != nil {
		n++
	}
	switch {
	case n == 0:
		return errors.New(errors.ErrCodeInvalidInput, "no input given")
	case n > 1:
		return errors.New(errors.ErrCodeInvalidInput, "only one of path, reader or tasks may be set")
	}
	if o.SuggestLimit < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "suggestion limit must not be negative")
	}
	if o.MaxTasks < 0 || o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "task limit and timeout must not be negative")
	}
	return nil
}

// Stats records stage timings.
type Stats struct {
	IngestTime  time.Duration `json:"ingestTime"`
	AnalyzeTime time.Duration `json:"analyzeTime"`
	SuggestTime time.Duration `json:"suggestTime,omitempty"`
}

// Output is the outcome of [Runner.Execute].
type Output struct {
	Format      ingest.Format        `json:"format,omitempty"`
	Schema      string               `json:"schema,omitempty"`
	Skipped     []task.Skipped       `json:"-"`
	Result      *analysis.Result     `json:"analysis"`
	Suggestions []suggest.Suggestion `json:"suggestions,omitempty"`
	Stats       Stats                `json:"stats"`
}
