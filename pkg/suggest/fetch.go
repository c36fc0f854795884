package suggest

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/task"
)

// DefaultLimit is how many bottlenecks get a suggestion by default.
const DefaultLimit = 3

// ErrorPrefix starts the text shown in place of a failed suggestion.
const ErrorPrefix = "Error generating suggestion: "

// Suggestion is the outcome of one fetch. On failure Text holds the inline
// error placeholder and Err the cause.
type Suggestion struct {
	TaskID   int    `json:"taskId"`
	TaskName string `json:"taskName"`
	Text     string `json:"text"`
	Error    string `json:"error,omitempty"`
	Err      error  `json:"-"`
}

// Failed reports whether the fetch failed.
func (s Suggestion) Failed() bool { return s.Err != nil }

// FetchAll requests suggestions for the first limit tasks of bottlenecks
// (in the given order) concurrently. A limit of zero or less selects
// [DefaultLimit]. Results keep the order of bottlenecks. Failures are
// recorded per task; FetchAll itself never fails.
func FetchAll(ctx context.Context, s Suggester, bottlenecks, all []task.Task, limit int) []Suggestion {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if len(bottlenecks) > limit {
		bottlenecks = bottlenecks[:limit]
	}
	out := make([]Suggestion, len(bottlenecks))
	if s == nil {
		s = Disabled{}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range bottlenecks {
		i, t := i, t
		g.Go(func() error {
			out[i] = fetchOne(gctx, s, t, all)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func fetchOne(ctx context.Context, s Suggester, t task.Task, all []task.Task) Suggestion {
	hooks := observability.Suggest()
	hooks.OnSuggestStart(ctx, s.Name(), t.ID)
	start := time.Now()

	text, err := s.Suggest(ctx, t, all)
	hooks.OnSuggestComplete(ctx, s.Name(), t.ID, time.Since(start), err)

	sg := Suggestion{TaskID: t.ID, TaskName: t.Name, Text: text}
	if err != nil {
		sg.Err = err
		sg.Error = errors.UserMessage(err)
		sg.Text = ErrorPrefix + sg.Error
	}
	return sg
}
