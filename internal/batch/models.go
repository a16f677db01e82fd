package batch

import "pixelpress/internal/assets"

// Guard names the runtime check that ended a chunk early.
type Guard string

const (
	GuardNone   Guard = ""
	GuardTime   Guard = "time"
	GuardMemory Guard = "memory"
)

// Outcome is the per-asset entry in a chunk report.
type Outcome struct {
	AssetID      int64
	Status       assets.Status
	Success      bool
	SavingsBytes int64
	Deleted      bool
	Error        string
}

// Report summarizes one RunChunk invocation.
type Report struct {
	// Done is true once no unprocessed assets remain.
	Done bool
	// Locked is true when another runner held the chunk lock; no work
	// was attempted.
	Locked bool
	// Guard names the runtime guard that stopped the chunk early.
	Guard          Guard
	Results        []Outcome
	ProcessedTotal int
	Remaining      int
}

// Summary is the cheap aggregate returned by Status, safe to poll.
type Summary struct {
	Total        int
	Processed    int
	Succeeded    int
	Remaining    int
	SavingsBytes int64
	AvgPercent   float64
}
