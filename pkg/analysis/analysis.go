// Package analysis runs the full critical-path and bottleneck analysis over
// one immutable task snapshot.
//
// [Analyze] is pure apart from the random [Result.ID]: it reads its input,
// never modifies it, touches no package state and cannot fail. Callers may
// run analyses concurrently on independent inputs. [AnalyzeContext] fails
// only when its context ends first.
package analysis

import (
	"context"
	"reflect"

	"github.com/google/uuid"

	"github.com/matzehuels/critpath/pkg/bottleneck"
	"github.com/matzehuels/critpath/pkg/critpath"
	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/task"
)

// Options configures an analysis run.
type Options struct {
	Bottleneck bottleneck.Options
}

// OwnerLoad sums the scheduled hours of one owner.
type OwnerLoad struct {
	Owner         string  `json:"owner"`
	Tasks         int     `json:"tasks"`
	Hours         float64 `json:"hours"`
	CriticalHours float64 `json:"criticalHours"`
}

// Result is the outcome of [Analyze].
type Result struct {
	ID string `json:"id"`

	CriticalPath         []task.Task `json:"criticalPathTasks"`
	CriticalPathIDs      []int       `json:"criticalPath"`
	CriticalPathDuration float64     `json:"criticalPathDuration"`
	// Truncated is set when a dependency cycle shortened the critical path.
	Truncated bool `json:"truncated"`
	// Fallback is set when the path search produced nothing and the
	// longest single task was reported instead.
	Fallback bool `json:"fallback"`

	Bottlenecks []int                   `json:"bottlenecks"`
	Ranked      []bottleneck.Bottleneck `json:"rankedBottlenecks"`

	// Tasks holds one entry per distinct id with IsCritical set.
	Tasks         []task.Task `json:"tasks"`
	TotalDuration float64     `json:"totalDuration"`
	Workload      []OwnerLoad `json:"workload"`

	// Edges are the resolvable dependency edges, for drawing the graph.
	Edges      []dag.Edge `json:"edges"`
	HasCycle   bool       `json:"hasCycle"`
	TopoOrder  []int      `json:"topoOrder,omitempty"`
	Unresolved []dag.Edge `json:"unresolved,omitempty"`

	// Schedule and ProjectDuration are only set for acyclic plans.
	Schedule        []critpath.Slot `json:"schedule"`
	ProjectDuration float64         `json:"projectDuration"`
}

// Analyze builds the dependency graph of tasks, finds its critical path,
// flags critical tasks and classifies bottlenecks. Empty input yields an
// empty result.
func Analyze(tasks []task.Task, opts Options) *Result {
	r, _ := AnalyzeContext(context.Background(), tasks, opts)
	return r
}

// AnalyzeContext is [Analyze] with cancellation of the path search. It
// returns ctx.Err() if ctx ends before the search completes.
func AnalyzeContext(ctx context.Context, tasks []task.Task, opts Options) (*Result, error) {
	g := dag.Build(tasks)
	path, err := critpath.FindContext(ctx, g)
	if err != nil {
		return nil, err
	}

	r := &Result{
		ID:              uuid.NewString(),
		CriticalPathIDs: path.IDs,
		Truncated:       path.Truncated,
		Edges:           g.Edges(),
		Unresolved:      g.Unresolved(),
	}
	if r.Edges == nil {
		r.Edges = []dag.Edge{}
	}

	if path.Empty() && g.Len() > 0 {
		id := longestTask(g)
		path = critpath.Path{IDs: []int{id}, Duration: g.Duration(id)}
		r.CriticalPathIDs = path.IDs
		r.Fallback = true
	}
	r.CriticalPathDuration = path.Duration

	r.Tasks = g.Tasks()
	for i := range r.Tasks {
		r.Tasks[i].IsCritical = path.Contains(r.Tasks[i].ID)
		r.TotalDuration += r.Tasks[i].Duration
	}
	r.CriticalPath = critpath.Tasks(g, path)
	for i := range r.CriticalPath {
		r.CriticalPath[i].IsCritical = true
	}

	r.Bottlenecks = bottleneck.Classify(r.Tasks, opts.Bottleneck)
	r.Ranked = bottleneck.Rank(g, r.Bottlenecks, opts.Bottleneck)
	r.Workload = workload(r.Tasks)

	if order, err := g.TopoOrder(); err != nil {
		r.HasCycle = true
	} else {
		r.TopoOrder = order
	}
	if !r.HasCycle {
		if s, err := critpath.Plan(g); err == nil {
			r.Schedule = s.Slots
			r.ProjectDuration = s.Duration
		}
	}
	return r, nil
}

// longestTask returns the first task with the maximum duration.
func longestTask(g *dag.TaskGraph) int {
	ids := g.IDs()
	best := ids[0]
	for _, id := range ids[1:] {
		if g.Duration(id) > g.Duration(best) {
			best = id
		}
	}
	return best
}

// workload groups tasks by owner in order of first appearance.
func workload(tasks []task.Task) []OwnerLoad {
	index := make(map[string]int)
	out := []OwnerLoad{}
	for _, t := range tasks {
		i, ok := index[t.Owner]
		if !ok {
			i = len(out)
			index[t.Owner] = i
			out = append(out, OwnerLoad{Owner: t.Owner})
		}
		out[i].Tasks++
		out[i].Hours += t.Duration
		if t.IsCritical {
			out[i].CriticalHours += t.Duration
		}
	}
	return out
}

// Task returns the analyzed task with the given id.
func (r *Result) Task(id int) (task.Task, bool) {
	for _, t := range r.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return task.Task{}, false
}

// Slot returns the schedule of the task with the given id.
func (r *Result) Slot(id int) (critpath.Slot, bool) {
	for _, s := range r.Schedule {
		if s.ID == id {
			return s, true
		}
	}
	return critpath.Slot{}, false
}

// BottleneckTasks returns the bottleneck tasks in discovery order.
func (r *Result) BottleneckTasks() []task.Task {
	out := make([]task.Task, 0, len(r.Bottlenecks))
	for _, id := range r.Bottlenecks {
		if t, ok := r.Task(id); ok {
			out = append(out, t)
		}
	}
	return out
}

// Equal reports whether a and b describe the same analysis, ignoring ID.
func Equal(a, b *Result) bool {
	if a == nil || b == nil {
		return a == b
	}
	x, y := *a, *b
	x.ID, y.ID = "", ""
	return reflect.DeepEqual(x, y)
}
