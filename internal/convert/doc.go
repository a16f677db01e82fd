// Package convert implements the conversion engine: one asset in, one
// terminal conversion result out. The engine runs a short-circuit skip
// chain (missing, too small, excluded, animated), then attempts every
// requested format for the main file and each variant, discarding any
// candidate that fails to beat its source size. Per-file failures are
// folded into the result's error list and never abort the asset, and
// every outcome, including skips, is persisted so repeated scans do not
// reconsider the asset.
package convert
