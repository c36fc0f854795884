// Package ingest reads task files and writes analysis results.
//
// # Formats
//
// Two input formats are supported, selected by file extension through
// [DetectFormat]:
//
//   - CSV: a header row followed by one task per row. Column names follow
//     one of the conventions in [task.DetectSchema]; day-based durations
//     are converted to hours. Rows without a numeric id are skipped and
//     reported in [Batch.Skipped].
//   - JSON: an array of task objects in canonical shape:
//
//	[
//	  {"id": 1, "name": "Design", "owner": "Alice", "duration": 5, "dependencies": []},
//	  {"id": 2, "name": "Backend", "owner": "Bob", "duration": 8, "dependencies": [1]}
//	]
//
// Dependencies may also be given as a delimited string ("1;2"). Each task is
// passed through [task.Normalize].
//
// Input that is not a sequence of records at all (a JSON object, a scalar,
// an array of non-objects) is the only hard failure and is reported with
// [errors.ErrCodeInvalidInput]. Everything else degrades: bad rows are
// skipped, bad fields fall back to defaults.
//
// # Output
//
// [WriteJSON] encodes a result, or any other value, as indented JSON.
package ingest
