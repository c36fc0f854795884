package critpath

import (
	"context"

	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/task"
)

// Path is a dependency chain ordered from its first task to its last.
type Path struct {
	IDs      []int   `json:"ids"`
	Duration float64 `json:"duration"`
	// Truncated is set when a cycle cut the chosen chain short.
	Truncated bool `json:"truncated,omitempty"`
}

// Empty reports whether the path has no tasks.
func (p Path) Empty() bool { return len(p.IDs) == 0 }

// Contains reports whether id lies on the path.
func (p Path) Contains(id int) bool {
	for _, v := range p.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Find returns the critical path of g. An empty graph yields an empty path.
func Find(g *dag.TaskGraph) Path {
	p, _ := FindContext(context.Background(), g)
	return p
}

// FindContext is [Find] with cancellation. The search polls ctx while it
// runs and returns ctx.Err() once ctx is done.
func FindContext(ctx context.Context, g *dag.TaskGraph) (Path, error) {
	s := &search{ctx: ctx, g: g}
	if !g.HasCycle() {
		s.memo = make(map[int]Path, g.Len())
	}

	var best Path
	found := false
	for _, sink := range g.Sinks() {
		p := s.longest(sink, map[int]bool{})
		if s.err != nil {
			return Path{IDs: []int{}}, s.err
		}
		if !found || p.Duration > best.Duration {
			best = p
			found = true
		}
	}
	if best.IDs == nil {
		best.IDs = []int{}
	}
	return best, nil
}

// checkEvery is the number of expansions between context polls.
const checkEvery = 1024

type search struct {
	ctx context.Context
	g   *dag.TaskGraph
	// memo caches chains by end task. It is nil for cyclic graphs, where
	// the result depends on the branch.
	memo  map[int]Path
	steps int
	err   error
}

// longest returns the heaviest chain ending at id. visited holds the ids on
// the current branch and is never modified.
func (s *search) longest(id int, visited map[int]bool) Path {
	if s.err != nil {
		return Path{}
	}
	if s.steps++; s.steps%checkEvery == 0 {
		if err := s.ctx.Err(); err != nil {
			s.err = err
			return Path{}
		}
	}
	if visited[id] {
		return Path{Truncated: true}
	}
	if p, ok := s.memo[id]; ok {
		return p
	}

	deps := s.g.Dependencies(id)
	if len(deps) == 0 {
		p := Path{IDs: []int{id}, Duration: s.g.Duration(id)}
		s.remember(id, p)
		return p
	}

	branch := make(map[int]bool, len(visited)+1)
	for k := range visited {
		branch[k] = true
	}
	branch[id] = true

	var best Path
	for i, dep := range deps {
		sub := s.longest(dep, branch)
		cand := Path{
			IDs:       append(append(make([]int, 0, len(sub.IDs)+1), sub.IDs...), id),
			Duration:  sub.Duration + s.g.Duration(id),
			Truncated: sub.Truncated,
		}
		if i == 0 || cand.Duration > best.Duration {
			best = cand
		}
	}
	s.remember(id, best)
	return best
}

func (s *search) remember(id int, p Path) {
	if s.memo != nil && s.err == nil {
		s.memo[id] = p
	}
}

// Tasks resolves p against g, returning task copies in path order. Ids
// unknown to g are skipped.
func Tasks(g *dag.TaskGraph, p Path) []task.Task {
	out := make([]task.Task, 0, len(p.IDs))
	for _, id := range p.IDs {
		if t, ok := g.Task(id); ok {
			out = append(out, t)
		}
	}
	return out
}
