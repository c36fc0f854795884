// Package task defines the canonical in-memory task representation used by
// the analysis engine, and the normalization of raw tabular records into it.
//
// Durations are always expressed in hours once a task leaves this package.
// Raw records arrive in one of the [Schema] conventions; [ParseRecord] maps
// them onto a [Task], converting day-based durations with an hours-per-day
// factor and dropping dependency tokens that are not positive integers.
package task

import (
	"fmt"
	"math"
	"slices"
)

const (
	// DefaultOwner is assigned when a record has no owner.
	DefaultOwner = "Unassigned"

	// DefaultHoursPerDay converts day-based durations into hours.
	DefaultHoursPerDay = 8.0

	// MinDuration is the duration, in hours, given to parsed records whose
	// duration is missing, unparseable, zero or negative.
	MinDuration = 1.0
)

// Task is a unit of project work with a duration and the tasks it waits on.
//
// Dependencies may reference ids that are not part of the task set and may
// form cycles; consumers must tolerate both.
type Task struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Owner        string  `json:"owner"`
	Duration     float64 `json:"duration"` // hours
	Dependencies []int   `json:"dependencies"`

	// IsCritical is derived by the analysis and never read from input.
	IsCritical bool `json:"isCritical"`
}

// DefaultName returns the label used for a task without a name.
func DefaultName(id int) string {
	return fmt.Sprintf("Task %d", id)
}

// Clone returns a deep copy of t.
func (t Task) Clone() Task {
	cp := t
	if t.Dependencies != nil {
		cp.Dependencies = slices.Clone(t.Dependencies)
	}
	return cp
}

// DependsOn reports whether t lists id as a dependency.
func (t Task) DependsOn(id int) bool {
	return slices.Contains(t.Dependencies, id)
}

// Normalize applies defaults to a task supplied in the canonical shape:
// empty name and owner are filled in, negative or NaN durations become 0,
// non-positive dependency ids are dropped and duplicates collapse to their
// first occurrence. IsCritical is cleared. The input is not modified.
func Normalize(t Task) Task {
	out := t.Clone()
	if out.Name == "" {
		out.Name = DefaultName(out.ID)
	}
	if out.Owner == "" {
		out.Owner = DefaultOwner
	}
	if math.IsNaN(out.Duration) || math.IsInf(out.Duration, 0) || out.Duration < 0 {
		out.Duration = 0
	}
	out.Dependencies = dedupe(out.Dependencies)
	out.IsCritical = false
	return out
}

// NormalizeAll applies [Normalize] to every task and returns a new slice.
func NormalizeAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = Normalize(t)
	}
	return out
}

func dedupe(ids []int) []int {
	out := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if id <= 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
