package convert

import (
	"fmt"
	"testing"

	"pixelpress/internal/assets"
	"pixelpress/internal/config"
)

func TestMatchesRules(t *testing.T) {
	cases := []struct {
		name     string
		path     string
		folders  []string
		patterns []string
		want     bool
	}{
		{"folder substring", "/lib/thumbnails/a.jpg", []string{"thumbnails"}, nil, true},
		{"folder miss", "/lib/photos/a.jpg", []string{"thumbnails"}, nil, false},
		{"glob on base name", "/lib/a-draft.png", nil, []string{"*-draft.*"}, true},
		{"glob does not span dirs", "/lib/draft/a.png", nil, []string{"*draft*"}, false},
		{"empty rules", "/lib/a.jpg", []string{""}, []string{""}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := matchesRules(tc.path, tc.folders, tc.patterns); got != tc.want {
				t.Errorf("matchesRules(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func TestAccumulatorSavingsIgnoreRegressions(t *testing.T) {
	acc := newAccumulator()
	acc.accept("/lib/a.jpg", config.FormatWebP, 1000, 400)
	acc.accept("/lib/a.jpg", config.FormatAVIF, 1000, 300)
	acc.accept("/lib/b.jpg", config.FormatWebP, 500, 450)

	result := &assets.Result{}
	acc.finish(result)

	if result.Status != assets.StatusOptimized || !result.AllOK {
		t.Fatalf("result = %+v", result)
	}
	// Savings are measured against the best candidate per file.
	if result.Savings != (1000-300)+(500-450) {
		t.Errorf("savings = %d", result.Savings)
	}
	if result.OriginalSize != 1500 {
		t.Errorf("original size = %d, want sum over both files", result.OriginalSize)
	}
	if result.OptimizedSize != 300+450 {
		t.Errorf("optimized size = %d, want sum of best candidates", result.OptimizedSize)
	}
	if len(result.FormatsGenerated) != 2 || result.FormatsGenerated[0] != "avif" {
		t.Errorf("generated = %v, want sorted [avif webp]", result.FormatsGenerated)
	}
}

func TestTruncateErrorsBoundsTheList(t *testing.T) {
	var errs []string
	for i := 0; i < maxRecordedErrors+5; i++ {
		errs = append(errs, fmt.Sprintf("failure %d", i))
	}
	truncated := truncateErrors(errs)
	if len(truncated) != maxRecordedErrors+1 {
		t.Fatalf("len = %d, want %d", len(truncated), maxRecordedErrors+1)
	}
	if truncated[maxRecordedErrors] != "and 5 more" {
		t.Errorf("trailing entry = %q", truncated[maxRecordedErrors])
	}
}
