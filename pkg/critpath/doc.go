// Package critpath finds the duration-maximizing dependency chain in a
// [dag.TaskGraph].
//
// # Algorithm
//
// For every candidate sink the finder expands the dependency chain depth
// first. Each branch carries its own visited set, copied on descent, so a
// task may appear on several branches but never twice on one:
//
//   - A task whose id is already on the current branch ends that branch.
//     The dependency contributes nothing and the resulting [Path] is marked
//     Truncated. Cycles therefore shorten the path instead of failing.
//   - A task without resolvable dependencies is a terminus.
//   - Otherwise every dependency is expanded, the current task is appended,
//     and the candidate with the largest summed duration is kept. On equal
//     durations the first candidate in declared dependency order wins.
//
// Across sinks the longest path wins; ties go to the sink that appears
// first in the input. Duration is the only ranking key: with all-zero
// durations the first chain found is returned, which is not necessarily
// the one with the most hops.
//
// # Scaling
//
// On acyclic graphs the branch never matters, so each task's best chain is
// computed once and reused: the search is linear in tasks plus edges. On
// cyclic graphs the result depends on the branch and nothing is cached.
// Shared sub-graphs are then walked once per path that reaches them, which
// grows exponentially on dense cycles; callers that accept untrusted input
// should bound the task count and use [FindContext] with a deadline.
// Recursion depth is bounded by the task count.
package critpath
