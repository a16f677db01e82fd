package assets

import (
	"time"
)

// Status classifies the terminal outcome of a conversion attempt.
type Status string

const (
	StatusOptimized      Status = "optimized"
	StatusPartial        Status = "partial"
	StatusSkippedSmall   Status = "skipped_small"
	StatusSkippedExclude Status = "skipped_excluded"
	StatusSkippedGIF     Status = "skipped_animated"
	StatusMissing        Status = "missing"
	StatusNoEngine       Status = "error_no_engine"
)

var allStatuses = []Status{
	StatusOptimized,
	StatusPartial,
	StatusSkippedSmall,
	StatusSkippedExclude,
	StatusSkippedGIF,
	StatusMissing,
	StatusNoEngine,
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// IsSkip reports whether the status records a skip heuristic rather
// than actual encoder work.
func (s Status) IsSkip() bool {
	switch s {
	case StatusSkippedSmall, StatusSkippedExclude, StatusSkippedGIF:
		return true
	default:
		return false
	}
}

// Asset is one catalog row: a main image file plus optional variants.
type Asset struct {
	ID               int64
	SourcePath       string
	MimeType         string
	FileSize         int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResultStatus     Status // empty until the first conversion attempt
	Result           *Result
	OriginalsDeleted bool
}

// Processed reports whether a terminal conversion result exists.
func (a *Asset) Processed() bool {
	return a.ResultStatus != ""
}

// Variant is a pre-generated alternate-resolution copy of an asset.
type Variant struct {
	ID       int64
	AssetID  int64
	Name     string
	Path     string
	FileSize int64
}

// Result is the persisted outcome of one conversion attempt. It is
// rewritten wholesale on every attempt.
type Result struct {
	Status           Status    `json:"status"`
	OriginalSize     int64     `json:"original_size"`
	OptimizedSize    int64     `json:"optimized_size"`
	Savings          int64     `json:"savings"`
	FormatsRequested []string  `json:"formats_requested"`
	FormatsGenerated []string  `json:"formats_generated"`
	AllOK            bool      `json:"all_ok"`
	Errors           []string  `json:"errors,omitempty"`
	Timestamp        time.Time `json:"timestamp"`
}

// SavingsPercent returns the relative size reduction for display.
func (r *Result) SavingsPercent() float64 {
	if r == nil || r.OriginalSize <= 0 {
		return 0
	}
	return float64(r.Savings) / float64(r.OriginalSize) * 100
}

// Deletable reports whether this result alone clears the conversion
// half of the delete gate: every attempted format succeeded and at
// least one derivative actually exists. A skip outcome is success but
// produces nothing to serve in the original's place, so it never
// qualifies.
func (r *Result) Deletable() bool {
	return r != nil && r.AllOK && len(r.FormatsGenerated) > 0
}

// Aggregates summarizes catalog-wide progress for status polling.
type Aggregates struct {
	Total        int
	Processed    int
	Succeeded    int
	SavingsBytes int64
	AvgPercent   float64
}

// Remaining returns the number of assets still lacking a terminal result.
func (a Aggregates) Remaining() int {
	if a.Total < a.Processed {
		return 0
	}
	return a.Total - a.Processed
}
