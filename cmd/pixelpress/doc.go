// Command pixelpress is the CLI for the image optimization engine:
// catalog ingestion, chunked batch runs, status polling, single-asset
// optimize/restore, backup expiry, and capability inspection.
package main
