// Package batch drives bulk optimization in bounded, resumable chunks.
// Each RunChunk call selects the lowest-id assets without a terminal
// result, backs them up when the delete protocol demands it, converts
// them, and applies the destructive-delete gate. Two guards (wall time
// and process memory) can end a chunk early at an asset boundary; all
// progress lives in the catalog, so any sequence of calls makes
// monotone forward progress. A file lock keeps interactive and
// scheduled callers from running a chunk concurrently.
package batch
