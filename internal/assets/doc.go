// Package assets persists the image catalog in SQLite: one row per
// asset (a main file plus derived-size variants) and, on the same row,
// the latest conversion result. An asset with no recorded result is
// unprocessed; that absence is the only signal the batch processor uses
// to find remaining work, so every conversion attempt, including skips,
// must write a terminal result.
package assets
