// Package tasks runs the track sync pipeline with real-time progress reporting.
//
// # Core Operations
//
// [SyncEngine] exposes the pipeline in three steps so callers can stop early:
//
//  1. [SyncEngine.Fetch] : refresh-token grant, then the top-tracks read
//     - A token failure aborts before any track request is made
//     - Returns records in the order the API returned them
//
//  2. [SyncEngine.SyncRecords] : one page write per record, in order
//     - Each write produces a [models.WriteResult]
//     - A failed write is logged and counted; the remaining records are still attempted
//
//  3. [SyncEngine.Run] : Fetch followed by SyncRecords
//     - Returns the [models.SyncResult] even when some writes failed
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate].
// Updates use select with default so a slow or absent reader never blocks the pipeline.
package tasks
