// Package scan implements the cyclic scan engine: the fixed-period loop
// that samples hardware inputs, runs the compiled program, commits
// hardware outputs, and refreshes the I/O image's bookkeeping cells, once
// per cycle, under the image's buffer lock.
package scan

import (
	"sync/atomic"
	"time"

	"github.com/openplc-go/runtime/hardware"
	"github.com/openplc-go/runtime/ioimage"
	"github.com/openplc-go/runtime/logging"
	"github.com/openplc-go/runtime/program"
	"github.com/openplc-go/runtime/ratelimit"
)

// CustomHooks lets an embedder splice extra logic into the cycle, mirroring
// the original runtime's updateCustomIn/updateCustomOut extension points.
// Either field may be nil.
type CustomHooks struct {
	UpdateIn  func()
	UpdateOut func()
}

// Engine drives one Program against one ioimage.Binding over one
// hardware.Contract, on a fixed period.
type Engine struct {
	Binding  *ioimage.Binding
	Hardware hardware.Contract
	Program  program.Program
	Hooks    CustomHooks
	Log      logging.Logger
	Overrun  *ratelimit.Diagnostics
}

const overrunCategory = "scan-overrun"

// RaisePriority attempts to place the calling goroutine's underlying
// thread into the real-time FIFO scheduling class and lock process
// memory, matching setThreadPriorityRT in the original runtime. Callers
// run this on whichever goroutine will go on to call Run, before
// starting any other service, per the bootstrap ordering in spec.md
// §4.g. Partial or total failure is logged as a warning, not fatal,
// matching the original's warn-only degrade.
func (e *Engine) RaisePriority() {
	if res := raisePriority(); !res.PriorityOK || !res.MemLockOK {
		if !res.PriorityOK {
			e.Log.Warning().Log("failed to set scan thread to real-time priority")
		}
		if !res.MemLockOK {
			e.Log.Warning().Log("failed to lock process memory")
		}
	}
}

// Run blocks, executing periodic scans, until runFlag is cleared. It exits
// cleanly after the in-progress scan completes. Run must only be called
// once per Engine, and only after the caller has already run
// Program.ConfigInit once during bootstrap; Run does not call it again.
func (e *Engine) Run(runFlag *atomic.Bool) {
	period := time.Duration(e.Binding.CommonTickTimeNS) * time.Nanosecond

	for runFlag.Load() {
		e.runCycle(period)
	}
}

func (e *Engine) runCycle(period time.Duration) {
	t0 := time.Now()

	e.Binding.WithLocked(func() {
		e.Hardware.SampleInputs(e.Binding)
		if e.Hooks.UpdateIn != nil {
			e.Hooks.UpdateIn()
		}

		e.Program.Tick(e.Binding.CycleLocked() + 1)

		if e.Hooks.UpdateOut != nil {
			e.Hooks.UpdateOut()
		}
		e.Hardware.CommitOutputs(e.Binding)

		e.Binding.Tick(time.Now())
	})

	deadline := t0.Add(period)
	now := time.Now()
	if now.After(deadline) {
		if e.Overrun != nil {
			if ok, suppressed := e.Overrun.Allow(overrunCategory); ok {
				b := e.Log.Warning().Dur("over_by", now.Sub(deadline))
				if suppressed > 0 {
					b = b.Int("suppressed", suppressed)
				}
				b.Log("scan cycle overran")
			}
		}
		return
	}

	time.Sleep(deadline.Sub(now))
}
