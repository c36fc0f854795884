package critpath

import (
	"math"

	"github.com/matzehuels/critpath/pkg/dag"
)

// slackEpsilon absorbs float rounding when deciding zero slack.
const slackEpsilon = 1e-6

// Slot holds the schedule of one task: earliest and latest start and
// finish in hours from project start, and the slack between them.
type Slot struct {
	ID          int     `json:"id"`
	EarlyStart  float64 `json:"earlyStart"`
	EarlyFinish float64 `json:"earlyFinish"`
	LateStart   float64 `json:"lateStart"`
	LateFinish  float64 `json:"lateFinish"`
	Slack       float64 `json:"slack"`
	// Critical is set for tasks without slack.
	Critical bool `json:"critical"`
}

// Schedule holds the slots of every task of a graph.
type Schedule struct {
	// Slots are in task input order.
	Slots []Slot `json:"slots"`
	// Duration is the largest early finish.
	Duration float64 `json:"duration"`
}

// Slot returns the slot of id.
func (s *Schedule) Slot(id int) (Slot, bool) {
	for _, sl := range s.Slots {
		if sl.ID == id {
			return sl, true
		}
	}
	return Slot{}, false
}

// Plan runs the forward and backward passes of the critical path method over
// g. It fails with an error wrapping [dag.ErrGraphHasCycle] when g has no
// topological order.
func Plan(g *dag.TaskGraph) (*Schedule, error) {
	order, err := g.TopoOrder()
	if err != nil {
		return nil, err
	}

	slots := make(map[int]*Slot, len(order))
	for _, id := range order {
		slots[id] = &Slot{ID: id}
	}

	// Forward pass.
	var total float64
	for _, id := range order {
		sl := slots[id]
		for _, dep := range g.Dependencies(id) {
			sl.EarlyStart = math.Max(sl.EarlyStart, slots[dep].EarlyFinish)
		}
		sl.EarlyFinish = sl.EarlyStart + g.Duration(id)
		total = math.Max(total, sl.EarlyFinish)
	}

	// Backward pass.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		sl := slots[id]
		sl.LateFinish = total
		for _, next := range g.Dependents(id) {
			sl.LateFinish = math.Min(sl.LateFinish, slots[next].LateStart)
		}
		sl.LateStart = sl.LateFinish - g.Duration(id)
		sl.Slack = sl.LateStart - sl.EarlyStart
		sl.Critical = math.Abs(sl.Slack) < slackEpsilon
	}

	out := &Schedule{Slots: make([]Slot, 0, len(order)), Duration: total}
	for _, id := range g.IDs() {
		out.Slots = append(out.Slots, *slots[id])
	}
	return out, nil
}
