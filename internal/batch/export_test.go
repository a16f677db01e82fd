package batch

import "time"

// Test hooks for the runtime guards.

func (p *Processor) SetNowFunc(fn func() time.Time) { p.now = fn }

func (p *Processor) SetMemUsageFunc(fn func() uint64) { p.memUsage = fn }
