// Package ratelimit throttles repeated diagnostic log emissions — scan
// overruns, floods of illegal-function requests from a misbehaving Modbus
// peer — so a stuck condition cannot turn the log into noise, without
// changing how often the underlying condition itself is handled.
package ratelimit

import (
	"sync"
	"time"

	"github.com/joeycumines/go-catrate"
)

// Diagnostics wraps a catrate.Limiter, tracking how many calls were
// suppressed since the last successful emission, per category.
type Diagnostics struct {
	limiter *catrate.Limiter

	mu         sync.Mutex
	suppressed map[string]int
}

// NewDiagnostics builds a Diagnostics with the given sliding-window rates
// (see catrate.NewLimiter for the constraints on rates: all durations and
// counts positive, shorter windows no looser than longer ones).
func NewDiagnostics(rates map[time.Duration]int) *Diagnostics {
	return &Diagnostics{
		limiter:    catrate.NewLimiter(rates),
		suppressed: make(map[string]int),
	}
}

// Allow reports whether the caller should actually emit a log line for
// category now. When it returns false, the caller should skip logging
// entirely; when it returns true, suppressed reports how many prior calls
// for the same category were skipped since the last true result, so the
// caller can fold that count into the message.
func (d *Diagnostics) Allow(category string) (ok bool, suppressed int) {
	_, allowed := d.limiter.Allow(category)

	d.mu.Lock()
	defer d.mu.Unlock()

	if allowed {
		suppressed = d.suppressed[category]
		delete(d.suppressed, category)
		return true, suppressed
	}
	d.suppressed[category]++
	return false, 0
}
