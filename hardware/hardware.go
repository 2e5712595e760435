// Package hardware defines the contract the scan engine uses to sample
// physical inputs and commit physical outputs once per cycle, standing in
// for the platform-specific hardware_layer.cpp/initializeHardware family in
// the original runtime.
package hardware

import "github.com/openplc-go/runtime/ioimage"

// Contract is implemented once per target platform (GPIO, fieldbus gateway,
// simulator, ...). All four methods are called with the owning
// ioimage.Binding's buffer lock held, except Initialize and Finalize, which
// run before the scan loop starts and after it stops, respectively.
type Contract interface {
	// Initialize performs one-time hardware setup before the first cycle.
	Initialize(b *ioimage.Binding) error

	// Finalize releases hardware resources after the scan loop stops.
	Finalize(b *ioimage.Binding) error

	// SampleInputs copies current physical input state into the image's
	// input cells (bool_input, byte_input, int_input). Called at the start
	// of every cycle, before the program tick.
	SampleInputs(b *ioimage.Binding)

	// CommitOutputs copies the image's output cells (bool_output,
	// byte_output, int_output) out to physical outputs. Called at the end
	// of every cycle, after the program tick.
	CommitOutputs(b *ioimage.Binding)
}

// Simulator is a Contract that only ever operates on the in-memory image: it
// has no physical I/O of its own, so SampleInputs and CommitOutputs are
// no-ops. It exists for development and for tests that exercise the scan
// engine without a real hardware layer.
type Simulator struct{}

func (Simulator) Initialize(*ioimage.Binding) error { return nil }
func (Simulator) Finalize(*ioimage.Binding) error   { return nil }
func (Simulator) SampleInputs(*ioimage.Binding)     {}
func (Simulator) CommitOutputs(*ioimage.Binding)    {}
