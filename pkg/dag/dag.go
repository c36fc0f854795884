package dag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gammazero/toposort"

	"github.com/matzehuels/critpath/pkg/task"
)

// ErrGraphHasCycle is returned by [TaskGraph.TopoOrder] when the dependency
// relation is cyclic.
var ErrGraphHasCycle = errors.New("graph contains a cycle")

// Edge is a dependency edge: To cannot start before From finishes.
type Edge struct {
	From int `json:"from"` // dependency
	To   int `json:"to"`   // dependent
}

// TaskGraph is an immutable adjacency view over a task snapshot.
// The zero value is an empty graph; use [Build] to create one.
type TaskGraph struct {
	order        []int
	tasks        map[int]task.Task
	deps         map[int][]int // id -> resolvable dependency ids, declared order
	dependents   map[int][]int // id -> ids that depend on it, input order
	unresolved   []Edge
	edges        []Edge
	sinks        []int
	sinkFallback bool
	selfLoop     bool
}

// Build creates a TaskGraph from tasks. Tasks are copied; the input slice is
// not modified. If several tasks share an id, the last one wins.
func Build(tasks []task.Task) *TaskGraph {
	g := &TaskGraph{
		tasks:      make(map[int]task.Task, len(tasks)),
		deps:       make(map[int][]int, len(tasks)),
		dependents: make(map[int][]int, len(tasks)),
	}

	for _, t := range tasks {
		if _, seen := g.tasks[t.ID]; !seen {
			g.order = append(g.order, t.ID)
		}
		g.tasks[t.ID] = t.Clone()
	}

	for _, id := range g.order {
		seen := make(map[int]bool)
		for _, dep := range g.tasks[id].Dependencies {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			if _, ok := g.tasks[dep]; !ok {
				g.unresolved = append(g.unresolved, Edge{From: dep, To: id})
				continue
			}
			g.deps[id] = append(g.deps[id], dep)
			g.edges = append(g.edges, Edge{From: dep, To: id})
			if dep == id {
				g.selfLoop = true
				continue
			}
			g.dependents[dep] = append(g.dependents[dep], id)
		}
	}

	for _, id := range g.order {
		if len(g.dependents[id]) == 0 {
			g.sinks = append(g.sinks, id)
		}
	}
	if len(g.sinks) == 0 && len(g.order) > 0 {
		g.sinks = slices.Clone(g.order)
		g.sinkFallback = true
	}
	return g
}

// Len returns the number of distinct task ids.
func (g *TaskGraph) Len() int { return len(g.order) }

// IDs returns task ids in first-occurrence order.
func (g *TaskGraph) IDs() []int { return slices.Clone(g.order) }

// Has reports whether id belongs to the graph.
func (g *TaskGraph) Has(id int) bool {
	_, ok := g.tasks[id]
	return ok
}

// Task returns a copy of the task with the given id.
func (g *TaskGraph) Task(id int) (task.Task, bool) {
	t, ok := g.tasks[id]
	if !ok {
		return task.Task{}, false
	}
	return t.Clone(), true
}

// Tasks returns copies of all tasks in first-occurrence order, with
// duplicates already resolved.
func (g *TaskGraph) Tasks() []task.Task {
	out := make([]task.Task, len(g.order))
	for i, id := range g.order {
		out[i] = g.tasks[id].Clone()
	}
	return out
}

// Duration returns the duration of id, or 0 if it is unknown.
func (g *TaskGraph) Duration(id int) float64 { return g.tasks[id].Duration }

// Dependencies returns the resolvable dependency ids of id in declared
// order. The returned slice must not be modified.
func (g *TaskGraph) Dependencies(id int) []int { return g.deps[id] }

// Dependents returns the ids of tasks that depend on id, excluding id itself.
// The returned slice must not be modified.
func (g *TaskGraph) Dependents(id int) []int { return g.dependents[id] }

// Edges returns a copy of all resolvable edges.
func (g *TaskGraph) Edges() []Edge { return slices.Clone(g.edges) }

// Unresolved returns edges whose dependency id is not part of the graph.
func (g *TaskGraph) Unresolved() []Edge { return slices.Clone(g.unresolved) }

// Sinks returns the candidate path endpoints in input order.
func (g *TaskGraph) Sinks() []int { return slices.Clone(g.sinks) }

// SinkFallback reports whether every task was depended upon, so all tasks
// were promoted to sinks.
func (g *TaskGraph) SinkFallback() bool { return g.sinkFallback }

// Descendants returns every task that transitively depends on id, in
// breadth-first discovery order. id itself is never included.
func (g *TaskGraph) Descendants(id int) []int {
	var out []int
	visited := map[int]bool{id: true}
	queue := slices.Clone(g.dependents[id])
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next] {
			continue
		}
		visited[next] = true
		out = append(out, next)
		queue = append(queue, g.dependents[next]...)
	}
	return out
}

// TopoOrder returns task ids in dependency order. It returns an error
// wrapping ErrGraphHasCycle when no such order exists.
func (g *TaskGraph) TopoOrder() ([]int, error) {
	if len(g.order) == 0 {
		return []int{}, nil
	}
	if g.selfLoop {
		return nil, fmt.Errorf("%w: task depends on itself", ErrGraphHasCycle)
	}

	var edges []toposort.Edge
	for _, id := range g.order {
		deps := g.deps[id]
		if len(deps) == 0 {
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, dep := range deps {
			edges = append(edges, toposort.Edge{dep, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphHasCycle, err)
	}

	order := make([]int, 0, len(sorted))
	for _, v := range sorted {
		if v != nil {
			order = append(order, v.(int))
		}
	}
	if len(order) != len(g.order) {
		return nil, fmt.Errorf("%w: sorted %d of %d tasks", ErrGraphHasCycle, len(order), len(g.order))
	}
	return order, nil
}

// HasCycle reports whether the resolvable dependency edges form a cycle.
func (g *TaskGraph) HasCycle() bool {
	_, err := g.TopoOrder()
	return err != nil
}
