// Package dag builds the dependency structure the analysis engine walks.
//
// # Overview
//
// A [TaskGraph] is derived from a flat task list in one pass. It owns an
// id → task lookup, the resolvable dependency edges of every task, the
// reverse (dependents) index, and the candidate sinks: tasks no other task
// depends on. Sinks are where critical-path search starts.
//
// The graph is rebuilt for every analysis and never mutated afterwards,
// so a *TaskGraph may be shared by concurrent readers.
//
// # Input Tolerance
//
// Task lists come from spreadsheets and are rarely clean:
//
//   - Duplicate ids: the last task with a given id wins; the id keeps the
//     position of its first occurrence.
//   - Duplicate dependency ids collapse to one edge.
//   - Dependencies on ids outside the task set are kept aside as
//     [TaskGraph.Unresolved] edges and otherwise ignored.
//   - Cycles are allowed. [TaskGraph.TopoOrder] reports them through
//     [ErrGraphHasCycle], but nothing else in this package requires a DAG.
//
// When every task has a dependent (a fully cyclic set), all tasks become
// sinks so the search still has somewhere to start; see [TaskGraph.SinkFallback].
//
// # Basic Usage
//
//	g := dag.Build(tasks)
//	for _, id := range g.Sinks() {
//	    fmt.Println(id, g.Dependencies(id))
//	}
package dag
