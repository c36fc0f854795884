// Package pkg holds the libraries behind critpath.
//
// # Overview
//
// Critpath answers two questions about a project plan: which chain of
// dependent tasks decides the finish date, and which tasks are likely to
// hold everything else up. The pkg directory is organized as:
//
//  1. [task], [ingest] - task model and CSV/JSON input
//  2. [dag], [critpath], [bottleneck] - graph, longest path, bottleneck rules
//  3. [analysis] - the combined result
//  4. [suggest] - LLM mitigation suggestions (Gemini)
//  5. [pipeline] - orchestration (ingest → analyze → suggest)
//  6. [cache], [config], [errors], [httputil], [observability], [buildinfo] - infrastructure
//
// # Architecture
//
//	CSV / JSON task file
//	         ↓
//	    [ingest] (schema detection, normalization)
//	         ↓
//	    [dag] (resolved edges, sinks, cycle detection)
//	         ↓
//	    [critpath] + [bottleneck] → [analysis].Result
//	         ↓
//	    [suggest] (optional, cached)
//
// # Quick Start
//
//	batch, err := ingest.ReadFile("plan.csv", task.ParseOptions{})
//	if err != nil {
//	    return err
//	}
//	res := analysis.Analyze(batch.Tasks, analysis.Options{})
//	fmt.Println(res.CriticalPathIDs, res.CriticalPathDuration)
//
// Most callers use [pipeline.Runner], which adds caching, logging and
// suggestions on top.
package pkg
