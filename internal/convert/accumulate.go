package convert

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"pixelpress/internal/assets"
	"pixelpress/internal/config"
)

// accumulator tracks per-file accepted sizes and failures across all
// (file, format) attempts for one asset.
type accumulator struct {
	attempts  int
	failures  int
	errors    []string
	generated map[config.Format]struct{}
	// best accepted derivative size per file, and the file's own size
	sourceSizes map[string]int64
	bestSizes   map[string]int64
}

func newAccumulator() *accumulator {
	return &accumulator{
		generated:   make(map[config.Format]struct{}),
		sourceSizes: make(map[string]int64),
		bestSizes:   make(map[string]int64),
	}
}

func (a *accumulator) fail(message string) {
	a.attempts++
	a.failures++
	a.errors = append(a.errors, message)
}

// observe records a file's on-disk size so it participates in the size
// totals even when every candidate for it fails.
func (a *accumulator) observe(file string, sourceSize int64) {
	a.sourceSizes[file] = sourceSize
}

func (a *accumulator) accept(file string, format config.Format, sourceSize, candidateSize int64) {
	a.attempts++
	a.generated[format] = struct{}{}
	a.sourceSizes[file] = sourceSize
	best, ok := a.bestSizes[file]
	if !ok || candidateSize < best {
		a.bestSizes[file] = candidateSize
	}
}

// finish folds the accumulated attempts into the result: status,
// generated formats, size totals, and a bounded error list. Sizes are
// summed per file over the main file and every variant, counting the
// best accepted candidate where one exists and the source size where
// none does, so savings can never exceed the original footprint.
func (a *accumulator) finish(result *assets.Result) {
	formats := make([]string, 0, len(a.generated))
	for format := range a.generated {
		formats = append(formats, string(format))
	}
	sort.Strings(formats)
	result.FormatsGenerated = formats

	var original, optimized int64
	for file, source := range a.sourceSizes {
		original += source
		if best, ok := a.bestSizes[file]; ok && best < source {
			optimized += best
		} else {
			optimized += source
		}
	}
	if len(a.sourceSizes) > 0 {
		result.OriginalSize = original
		result.OptimizedSize = optimized
	}
	result.Savings = original - optimized

	switch {
	case len(a.generated) > 0 && a.failures == 0:
		result.Status = assets.StatusOptimized
		result.AllOK = true
	default:
		// Some or all attempts failed. Even with zero outputs this is a
		// partial outcome, not a skip: the error list says why.
		result.Status = assets.StatusPartial
	}

	result.Errors = append(result.Errors, truncateErrors(a.errors)...)
}

func truncateErrors(errs []string) []string {
	if len(errs) <= maxRecordedErrors {
		return errs
	}
	truncated := make([]string, maxRecordedErrors, maxRecordedErrors+1)
	copy(truncated, errs[:maxRecordedErrors])
	return append(truncated, fmt.Sprintf("and %d more", len(errs)-maxRecordedErrors))
}

// matchesRules checks a path against folder substrings (anywhere in the
// path) and filename globs (against the base name).
func matchesRules(path string, folders, patterns []string) bool {
	for _, folder := range folders {
		if folder != "" && strings.Contains(path, folder) {
			return true
		}
	}
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if ok, err := filepath.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
