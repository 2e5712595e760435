package ioimage

import (
	"fmt"
	"sync"
	"time"
)

// Binding is the single externally visible handle to an Image. It owns the
// buffer lock that every reader and writer of the image — the scan engine,
// the Modbus slave, and any other registered service — must hold while
// touching cell contents.
//
// The scan engine holds the lock for the full duration of a scan cycle
// (sample, tick, commit); everyone else holds it only for the duration of a
// single request, or of one flushed batch of write requests when writes go
// through the Modbus write coalescer.
type Binding struct {
	Image *Image

	// CommonTickTimeNS is the configured scan period, in nanoseconds,
	// mirroring common_ticktime__ in the original runtime.
	CommonTickTimeNS uint64

	mu    sync.Mutex
	cycle uint64
}

// NewBinding constructs a Binding over a freshly zeroed Image. tickTimeNS is
// the configured scan period. It is not validated, here or by the scan
// engine: with a zero period the engine runs cycles back to back without
// sleeping, treating each one as an overrun.
func NewBinding(tickTimeNS uint64) *Binding {
	return &Binding{
		Image:            &Image{},
		CommonTickTimeNS: tickTimeNS,
	}
}

// Lock acquires the buffer lock. Callers must call Unlock.
func (b *Binding) Lock() { b.mu.Lock() }

// Unlock releases the buffer lock.
func (b *Binding) Unlock() { b.mu.Unlock() }

// WithLocked runs fn with the buffer lock held, releasing it even if fn
// panics.
func (b *Binding) WithLocked(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn()
}

// Cycle returns the number of scan cycles completed so far. It acquires the
// buffer lock itself, so it must not be called with the lock already held;
// use CycleLocked from within WithLocked instead.
func (b *Binding) Cycle() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cycle
}

// CycleLocked is equivalent to Cycle, but assumes the caller already holds
// the buffer lock (e.g. from within WithLocked). Calling it without the
// lock held is a race.
func (b *Binding) CycleLocked() uint64 {
	return b.cycle
}

// Tick advances the cycle counter and refreshes the special-functions cells
// that carry wall-clock signals, mirroring the system-reserved locations the
// original glue layer exposes under %MD (current time in seconds, current
// cycle count). Callers must hold the lock; the scan engine calls this once
// per cycle as part of its own locked section.
func (b *Binding) Tick(now time.Time) {
	b.cycle++
	b.Image.SpecialFunctions[0] = SpecialCell{Present: true, Value: now.Unix()}
	b.Image.SpecialFunctions[1] = SpecialCell{Present: true, Value: int64(b.cycle)}
}

// ErrOutOfRange reports an out-of-bounds cell address.
type ErrOutOfRange struct {
	Kind  Kind
	Index int
}

func (e ErrOutOfRange) Error() string {
	return fmt.Sprintf("ioimage: %s index %d out of range [0,%d)", e.Kind, e.Index, Capacity)
}

// BoolAt returns a pointer to the requested discrete cell, or an error if
// out of range. sub must be in [0,8).
func (b *Binding) BoolAt(kind Kind, index, sub int) (*BoolCell, error) {
	if index < 0 || index >= Capacity || sub < 0 || sub >= 8 {
		return nil, ErrOutOfRange{Kind: kind, Index: index}
	}
	switch kind {
	case KindBoolInput:
		return &b.Image.BoolInput[index][sub], nil
	case KindBoolOutput:
		return &b.Image.BoolOutput[index][sub], nil
	default:
		return nil, fmt.Errorf("ioimage: %s is not a bool-kind cell", kind)
	}
}

// ByteAt returns a pointer to the requested byte cell.
func (b *Binding) ByteAt(kind Kind, index int) (*ByteCell, error) {
	if index < 0 || index >= Capacity {
		return nil, ErrOutOfRange{Kind: kind, Index: index}
	}
	switch kind {
	case KindByteInput:
		return &b.Image.ByteInput[index], nil
	case KindByteOutput:
		return &b.Image.ByteOutput[index], nil
	default:
		return nil, fmt.Errorf("ioimage: %s is not a byte-kind cell", kind)
	}
}

// WordAt returns a pointer to the requested 16-bit cell.
func (b *Binding) WordAt(kind Kind, index int) (*WordCell, error) {
	if index < 0 || index >= Capacity {
		return nil, ErrOutOfRange{Kind: kind, Index: index}
	}
	switch kind {
	case KindIntInput:
		return &b.Image.IntInput[index], nil
	case KindIntOutput:
		return &b.Image.IntOutput[index], nil
	case KindIntMemory:
		return &b.Image.IntMemory[index], nil
	default:
		return nil, fmt.Errorf("ioimage: %s is not a word-kind cell", kind)
	}
}

// DwordAt returns a pointer to the requested 32-bit cell.
func (b *Binding) DwordAt(kind Kind, index int) (*DwordCell, error) {
	if index < 0 || index >= Capacity {
		return nil, ErrOutOfRange{Kind: kind, Index: index}
	}
	if kind != KindDintMemory {
		return nil, fmt.Errorf("ioimage: %s is not a dword-kind cell", kind)
	}
	return &b.Image.DintMemory[index], nil
}

// LwordAt returns a pointer to the requested 64-bit cell.
func (b *Binding) LwordAt(kind Kind, index int) (*LwordCell, error) {
	if index < 0 || index >= Capacity {
		return nil, ErrOutOfRange{Kind: kind, Index: index}
	}
	if kind != KindLintMemory {
		return nil, fmt.Errorf("ioimage: %s is not a lword-kind cell", kind)
	}
	return &b.Image.LintMemory[index], nil
}

// SpecialAt returns a pointer to the requested special-functions cell.
func (b *Binding) SpecialAt(index int) (*SpecialCell, error) {
	if index < 0 || index >= Capacity {
		return nil, ErrOutOfRange{Kind: KindSpecialFunctions, Index: index}
	}
	return &b.Image.SpecialFunctions[index], nil
}
