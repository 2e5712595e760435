package ioimage

// Capacity is the fixed size (N) of every array in the I/O image, matching
// the buffer sizes generated by the glue compiler this runtime is paired
// with.
const Capacity = 1024

type (
	// BoolCell is an optional one-bit located variable.
	BoolCell struct {
		Present bool
		Value   bool
	}

	// ByteCell is an optional eight-bit located variable.
	ByteCell struct {
		Present bool
		Value   uint8
	}

	// WordCell is an optional sixteen-bit located variable.
	WordCell struct {
		Present bool
		Value   uint16
	}

	// DwordCell is an optional thirty-two-bit located variable.
	DwordCell struct {
		Present bool
		Value   uint32
	}

	// LwordCell is an optional sixty-four-bit located variable.
	LwordCell struct {
		Present bool
		Value   uint64
	}

	// SpecialCell is an optional sixty-four-bit signed cell reserved for
	// system-provided signals, such as the wall-clock seconds refreshed by
	// Binding.Tick.
	SpecialCell struct {
		Present bool
		Value   int64
	}
)

// Image is the fixed-capacity aggregate of every I/O buffer the control
// program may be bound against. Once a program has been bound (the
// Present flags set), the shape of Image must not change again.
type Image struct {
	BoolInput  [Capacity][8]BoolCell
	BoolOutput [Capacity][8]BoolCell

	ByteInput  [Capacity]ByteCell
	ByteOutput [Capacity]ByteCell

	IntInput  [Capacity]WordCell
	IntOutput [Capacity]WordCell

	IntMemory  [Capacity]WordCell
	DintMemory [Capacity]DwordCell
	LintMemory [Capacity]LwordCell

	SpecialFunctions [Capacity]SpecialCell
}

// Kind identifies one of the typed cell arrays held by Image, for use with
// Binding's address-indexed accessors.
type Kind int

const (
	KindBoolInput Kind = iota
	KindBoolOutput
	KindByteInput
	KindByteOutput
	KindIntInput
	KindIntOutput
	KindIntMemory
	KindDintMemory
	KindLintMemory
	KindSpecialFunctions
)

// String names a Kind for diagnostics.
func (k Kind) String() string {
	switch k {
	case KindBoolInput:
		return "bool_input"
	case KindBoolOutput:
		return "bool_output"
	case KindByteInput:
		return "byte_input"
	case KindByteOutput:
		return "byte_output"
	case KindIntInput:
		return "int_input"
	case KindIntOutput:
		return "int_output"
	case KindIntMemory:
		return "int_memory"
	case KindDintMemory:
		return "dint_memory"
	case KindLintMemory:
		return "lint_memory"
	case KindSpecialFunctions:
		return "special_functions"
	default:
		return "unknown"
	}
}
