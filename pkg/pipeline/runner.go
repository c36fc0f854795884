package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/critpath/pkg/analysis"
	"github.com/matzehuels/critpath/pkg/cache"
	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/ingest"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/suggest"
	"github.com/matzehuels/critpath/pkg/task"
)

// Runner executes pipelines. It holds no per-run state, so one Runner can
// serve concurrent requests.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Suggester suggest.Suggester
	Logger    *log.Logger
}

// NewRunner fills nil arguments with a null cache, the default keyer, the
// disabled suggester and the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, s suggest.Suggester, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if s == nil {
		s = suggest.Disabled{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Suggester: s, Logger: logger}
}

// Execute runs ingest, analysis and, if requested, suggestion fetching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Output, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	out := &Output{}

	start := time.Now()
	batch, err := r.Ingest(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	out.Stats.IngestTime = time.Since(start)
	out.Format = batch.Format
	out.Skipped = batch.Skipped
	if batch.Format == ingest.FormatCSV {
		out.Schema = batch.Schema.String()
	}

	if opts.MaxTasks > 0 && len(batch.Tasks) > opts.MaxTasks {
		return nil, errors.New(errors.ErrCodeInvalidInput, "plan has %d tasks, the limit is %d", len(batch.Tasks), opts.MaxTasks)
	}

	start = time.Now()
	out.Result, err = r.Analyze(ctx, batch.Tasks, opts)
	if err != nil {
		return nil, err
	}
	out.Stats.AnalyzeTime = time.Since(start)

	if opts.Suggest || opts.SuggestTaskID != 0 {
		start = time.Now()
		out.Suggestions, err = r.Suggest(ctx, out.Result, opts)
		if err != nil {
			return nil, err
		}
		out.Stats.SuggestTime = time.Since(start)
	}
	return out, nil
}

// Ingest reads the input named by opts into a batch of tasks.
func (r *Runner) Ingest(ctx context.Context, opts Options) (*ingest.Batch, error) {
	start := time.Now()
	var (
		batch *ingest.Batch
		err   error
	)
	switch {
	case opts.Tasks != nil:
		batch = &ingest.Batch{Tasks: task.NormalizeAll(opts.Tasks)}
	case opts.Path != "":
		batch, err = ingest.ReadFile(opts.Path, opts.Parse)
	default:
		batch, err = ingest.Read(opts.Reader, opts.Format, opts.Parse)
	}

	format := ""
	if batch != nil {
		format = string(batch.Format)
	}
	if err != nil {
		observability.Analysis().OnIngestComplete(ctx, format, 0, 0, time.Since(start), err)
		return nil, err
	}
	observability.Analysis().OnIngestComplete(ctx, format, len(batch.Tasks), len(batch.Skipped), time.Since(start), nil)

	for _, s := range batch.Skipped {
		r.Logger.Warn("skipped record", "row", s.Row, "reason", s.Reason)
	}
	r.Logger.Debug("read tasks",
		"format", batch.Format,
		"tasks", len(batch.Tasks),
		"skipped", len(batch.Skipped),
		"duration", time.Since(start))
	return batch, nil
}

// Analyze runs the analysis and logs a summary. If opts.Timeout is set the
// path search is abandoned after it with a TIMEOUT error.
func (r *Runner) Analyze(ctx context.Context, tasks []task.Task, opts Options) (*analysis.Result, error) {
	hooks := observability.Analysis()
	hooks.OnAnalyzeStart(ctx, len(tasks))
	start := time.Now()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	res, err := analysis.AnalyzeContext(ctx, tasks, analysis.Options{Bottleneck: opts.Bottleneck})
	if err != nil {
		hooks.OnAnalyzeComplete(ctx, len(tasks), 0, time.Since(start), err)
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "analysis of %d tasks took longer than %s", len(tasks), opts.Timeout)
		}
		return nil, fmt.Errorf("analyze: %w", err)
	}

	hooks.OnAnalyzeComplete(ctx, len(res.Tasks), len(res.Bottlenecks), time.Since(start), nil)
	r.Logger.Info("analyzed tasks",
		"tasks", len(res.Tasks),
		"path", len(res.CriticalPathIDs),
		"duration", res.CriticalPathDuration,
		"bottlenecks", len(res.Bottlenecks))
	if res.HasCycle {
		r.Logger.Warn("dependency cycle detected; critical path may be truncated")
	}
	if n := len(res.Unresolved); n > 0 {
		r.Logger.Debug("ignored unknown dependencies", "edges", n)
	}
	return res, nil
}

// Suggest fetches suggestions for the result's bottlenecks, or for the single
// task opts.SuggestTaskID names. Provider failures are reported inline; an
// unknown task id is an error.
func (r *Runner) Suggest(ctx context.Context, res *analysis.Result, opts Options) ([]suggest.Suggestion, error) {
	targets := res.BottleneckTasks()
	limit := opts.SuggestLimit
	if opts.SuggestTaskID != 0 {
		t, ok := res.Task(opts.SuggestTaskID)
		if !ok {
			return nil, errors.New(errors.ErrCodeTaskNotFound, "task %d not found", opts.SuggestTaskID)
		}
		targets, limit = []task.Task{t}, 1
	}
	if len(targets) == 0 {
		return []suggest.Suggestion{}, nil
	}

	out := suggest.FetchAll(ctx, r.Suggester, targets, res.Tasks, limit)
	failed := 0
	for _, s := range out {
		if s.Failed() {
			failed++
			r.Logger.Warn("suggestion failed", "task", s.TaskID, "err", s.Err)
		}
	}
	r.Logger.Info("fetched suggestions", "provider", r.Suggester.Name(), "count", len(out), "failed", failed)
	return out, nil
}

// StoreResult saves res so it can be fetched by id later.
func (r *Runner) StoreResult(ctx context.Context, res *analysis.Result, ttl time.Duration) error {
	key := r.Keyer.ResultKey(res.ID)
	if err := cache.SetJSON(ctx, r.Cache, key, res, ttl); err != nil {
		return fmt.Errorf("store result: %w", err)
	}
	observability.Cache().OnCacheSet(ctx, "result", 0)
	return nil
}

// LoadResult returns a result saved by [Runner.StoreResult].
func (r *Runner) LoadResult(ctx context.Context, id string) (*analysis.Result, error) {
	var res analysis.Result
	ok, err := cache.GetJSON(ctx, r.Cache, r.Keyer.ResultKey(id), &res)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, "result")
		return nil, errors.New(errors.ErrCodeNotFound, "analysis %s not found", id)
	}
	observability.Cache().OnCacheHit(ctx, "result")
	return &res, nil
}
