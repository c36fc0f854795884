// Package bottleneck flags tasks that are likely to hold up a schedule.
//
// A task is a bottleneck when it waits on more than [Options.MaxDependencies]
// resolvable tasks (fan-in) or when its duration exceeds
// [Options.ThresholdHours]. Only dependencies that exist in the analyzed
// task set count toward fan-in.
package bottleneck

import (
	"cmp"
	"slices"

	"github.com/matzehuels/critpath/pkg/dag"
	"github.com/matzehuels/critpath/pkg/task"
)

const (
	// DefaultMaxDependencies flags tasks with two or more dependencies.
	DefaultMaxDependencies = 1
	// DefaultThresholdHours is five working days.
	DefaultThresholdHours = 5 * task.DefaultHoursPerDay
)

// Reason names why a task was flagged.
type Reason string

const (
	ReasonFanIn        Reason = "fan_in"
	ReasonLongDuration Reason = "long_duration"
)

// Options tunes classification. Zero values select the defaults.
type Options struct {
	MaxDependencies int
	ThresholdHours  float64
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	if o.MaxDependencies <= 0 {
		o.MaxDependencies = DefaultMaxDependencies
	}
	if o.ThresholdHours <= 0 {
		o.ThresholdHours = DefaultThresholdHours
	}
	return o
}

// Reasons returns why t is a bottleneck given the set of known ids, or nil
// if it is not one.
func (o Options) Reasons(t task.Task, known func(id int) bool) []Reason {
	o = o.WithDefaults()
	var reasons []Reason
	if resolvable(t, known) > o.MaxDependencies {
		reasons = append(reasons, ReasonFanIn)
	}
	if t.Duration > o.ThresholdHours {
		reasons = append(reasons, ReasonLongDuration)
	}
	return reasons
}

func resolvable(t task.Task, known func(id int) bool) int {
	n := 0
	seen := make(map[int]bool, len(t.Dependencies))
	for _, d := range t.Dependencies {
		if seen[d] || !known(d) {
			continue
		}
		seen[d] = true
		n++
	}
	return n
}

// Classify returns the ids of bottleneck tasks in input order. Each id is
// reported once even if it occurs several times in tasks.
func Classify(tasks []task.Task, opts Options) []int {
	ids := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	known := func(id int) bool { return ids[id] }

	out := []int{}
	reported := make(map[int]bool)
	for _, t := range tasks {
		if reported[t.ID] {
			continue
		}
		if len(opts.Reasons(t, known)) > 0 {
			out = append(out, t.ID)
			reported[t.ID] = true
		}
	}
	return out
}

// Bottleneck describes one flagged task and its downstream reach.
type Bottleneck struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	Owner        string   `json:"owner"`
	Duration     float64  `json:"duration"`
	Dependencies int      `json:"dependencies"`
	Dependents   int      `json:"dependents"`
	Descendants  int      `json:"descendants"`
	Impact       float64  `json:"impact"`
	Reasons      []Reason `json:"reasons"`
}

// Rank describes the given bottleneck ids against g, ordered by impact
// (own duration plus that of every task downstream), highest first. Equal
// impacts keep the order of ids. Ids unknown to g are skipped.
func Rank(g *dag.TaskGraph, ids []int, opts Options) []Bottleneck {
	out := make([]Bottleneck, 0, len(ids))
	for _, id := range ids {
		t, ok := g.Task(id)
		if !ok {
			continue
		}
		desc := g.Descendants(id)
		impact := t.Duration
		for _, d := range desc {
			impact += g.Duration(d)
		}
		out = append(out, Bottleneck{
			ID:           id,
			Name:         t.Name,
			Owner:        t.Owner,
			Duration:     t.Duration,
			Dependencies: len(g.Dependencies(id)),
			Dependents:   len(g.Dependents(id)),
			Descendants:  len(desc),
			Impact:       impact,
			Reasons:      opts.Reasons(t, g.Has),
		})
	}
	slices.SortStableFunc(out, func(a, b Bottleneck) int {
		return cmp.Compare(b.Impact, a.Impact)
	})
	return out
}
