// Package backup maintains the quarantine mirror: verified copies of
// originals stored under the same relative path as in the library tree.
// A mirrored copy must exist before the delete protocol may remove an
// original, and restore puts the mirrored bytes back while clearing the
// asset's derivatives and recorded result. Aged copies are expired by
// walking the mirror and pruning directories left empty.
package backup
