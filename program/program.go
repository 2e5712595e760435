// Package program defines the interface the scan engine drives once per
// cycle, standing in for the MatIEC-generated config_init__/config_run__
// pair that a compiled structured-text program provides in the original
// runtime.
package program

// Program is a compiled control program bound to an ioimage.Binding.
// Bootstrap calls ConfigInit exactly once, before the binding is built and
// the first cycle runs; the scan engine then calls Tick exactly once per
// cycle, with the binding's buffer lock already held.
type Program interface {
	// ConfigInit performs one-time program setup, equivalent to the
	// generated config_init__ entry point.
	ConfigInit()

	// Tick executes one scan of the program body against the currently
	// bound image, equivalent to the generated config_run__(tick) entry
	// point. cycle is the 1-based index of the cycle being executed.
	Tick(cycle uint64)

	// TickTimeNS is the configured scan period in nanoseconds, equivalent
	// to the generated common_ticktime__ global.
	TickTimeNS() uint64
}

// DefaultTickTimeNS is the scan period example/Config0.cpp exports
// (50ms), used as NoOp's period.
const DefaultTickTimeNS = 50_000_000

// NoOp is a Program that does nothing, matching the behavior of the
// original runtime's example/Config0.cpp — useful as a default when no
// compiled program has been linked in, or in tests that only exercise the
// scan engine's own bookkeeping.
type NoOp struct{}

func (NoOp) ConfigInit()        {}
func (NoOp) Tick(uint64)        {}
func (NoOp) TickTimeNS() uint64 { return DefaultTickTimeNS }
