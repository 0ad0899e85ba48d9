// Package models defines the records that flow through a sync run.
//
//   - [TrackRecord] : one normalized top track, built from a Spotify API item
//   - [WriteResult] : outcome of creating one Notion page for a [TrackRecord]
//   - [SyncResult] : ordered write results plus aggregate counts for a run
//
// Records are immutable once built; a [SyncResult] is only mutated through [SyncResult.Add]
// so its counts always agree with its results.
package models
