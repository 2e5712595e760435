package modbus

import (
	"errors"

	"github.com/openplc-go/runtime/ioimage"
)

// ErrOutOfRange is returned by every Strategy accessor when the requested
// address falls outside its mapped space. Per spec, this always surfaces
// to a peer as an IllegalDataAddress exception.
var ErrOutOfRange = errors.New("modbus: address out of mapped range")

// SpaceConfig sizes each of the four Modbus address spaces, in the unit
// native to that space: individual bits for coils and discrete inputs,
// 16-bit registers for holding and input registers.
type SpaceConfig struct {
	CoilsSize            int
	DiscreteInputsSize   int
	HoldingRegistersSize int
	InputRegistersSize   int
}

// DefaultSpaceConfig matches ModbusSlaveConfig's constructor defaults in
// the original runtime's slave.cpp.
func DefaultSpaceConfig() SpaceConfig {
	return SpaceConfig{
		CoilsSize:            8192,
		DiscreteInputsSize:   8192,
		HoldingRegistersSize: 8192,
		InputRegistersSize:   1024,
	}
}

// Holding-register cascade bases: a holding-register address below
// regBaseIntMemory lands in int_output, below regBaseDintMemory lands in
// int_memory, and so on, matching the size-stride fall-through described
// in spec.md's indexed-strategy mapping table (1 register per word cell,
// 2 per dword cell, 4 per lword/special cell). special_functions is only
// reachable if a deployment widens HoldingRegistersSize past the default
// 8192, since the default exactly spans int_output+int_memory+dint_memory+
// lint_memory (1024+1024+2048+4096).
const (
	regBaseIntOutput  = 0
	regBaseIntMemory  = regBaseIntOutput + ioimage.Capacity
	regBaseDintMemory = regBaseIntMemory + ioimage.Capacity
	regBaseLintMemory = regBaseDintMemory + ioimage.Capacity*2
	regBaseSpecial    = regBaseLintMemory + ioimage.Capacity*4
)

// Strategy maps Modbus addresses onto ioimage cells and serializes every
// access through the owning Binding's buffer lock: each exported method is
// one complete critical section.
type Strategy struct {
	Binding *ioimage.Binding
	Spaces  SpaceConfig
}

// NewStrategy builds a Strategy over b, sized per spaces.
func NewStrategy(b *ioimage.Binding, spaces SpaceConfig) *Strategy {
	return &Strategy{Binding: b, Spaces: spaces}
}

// ReadCoils packs count coils starting at start, LSB-first within each
// byte, into out (which must be at least (count+7)/8 bytes).
func (s *Strategy) ReadCoils(start, count int, out []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		err = readBitsLocked(&s.Binding.Image.BoolOutput, s.Spaces.CoilsSize, start, count, out)
	})
	return err
}

// ReadDiscreteInputs is ReadCoils over the read-only discrete-input space.
func (s *Strategy) ReadDiscreteInputs(start, count int, out []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		err = readBitsLocked(&s.Binding.Image.BoolInput, s.Spaces.DiscreteInputsSize, start, count, out)
	})
	return err
}

// ReadHoldingRegisters emits count big-endian 16-bit words starting at
// start, into out (which must be at least count*2 bytes).
func (s *Strategy) ReadHoldingRegisters(start, count int, out []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		for i := 0; i < count; i++ {
			var word uint16
			word, err = readHoldingWordLocked(s.Binding, start+i)
			if err != nil {
				return
			}
			out[2*i] = byte(word >> 8)
			out[2*i+1] = byte(word)
		}
	})
	return err
}

// ReadInputRegisters is ReadHoldingRegisters over the read-only
// int_input space.
func (s *Strategy) ReadInputRegisters(start, count int, out []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		if start < 0 || count < 0 || start+count > s.Spaces.InputRegistersSize || start+count > ioimage.Capacity {
			err = ErrOutOfRange
			return
		}
		for i := 0; i < count; i++ {
			word := s.Binding.Image.IntInput[start+i].Value
			out[2*i] = byte(word >> 8)
			out[2*i+1] = byte(word)
		}
	})
	return err
}

// WriteCoil sets a single coil.
func (s *Strategy) WriteCoil(addr int, value bool) error {
	var err error
	s.Binding.WithLocked(func() {
		err = writeBitLocked(&s.Binding.Image.BoolOutput, s.Spaces.CoilsSize, addr, value)
	})
	return err
}

// WriteCoils sets count coils starting at start from data, which packs
// coils LSB-first within each byte exactly as ReadCoils does.
func (s *Strategy) WriteCoils(start, count int, data []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		if start < 0 || count < 0 || start+count > s.Spaces.CoilsSize || start+count > ioimage.Capacity*8 {
			err = ErrOutOfRange
			return
		}
		for i := 0; i < count; i++ {
			bit := (data[i/8] >> uint(i%8)) & 1
			idx, sub := (start+i)/8, (start+i)%8
			s.Binding.Image.BoolOutput[idx][sub] = ioimage.BoolCell{Present: true, Value: bit != 0}
		}
	})
	return err
}

// WriteHoldingRegister writes one 16-bit register from data[0:2].
func (s *Strategy) WriteHoldingRegister(addr int, data []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		err = writeHoldingWordLocked(s.Binding, addr, uint16(data[0])<<8|uint16(data[1]))
	})
	return err
}

// WriteHoldingRegisters writes count big-endian 16-bit registers starting
// at start from data.
func (s *Strategy) WriteHoldingRegisters(start, count int, data []byte) error {
	var err error
	s.Binding.WithLocked(func() {
		for i := 0; i < count; i++ {
			word := uint16(data[2*i])<<8 | uint16(data[2*i+1])
			if err = writeHoldingWordLocked(s.Binding, start+i, word); err != nil {
				return
			}
		}
	})
	return err
}

func readBitsLocked(space *[ioimage.Capacity][8]ioimage.BoolCell, spaceSize, start, count int, out []byte) error {
	if start < 0 || count < 0 || start+count > spaceSize || start+count > ioimage.Capacity*8 {
		return ErrOutOfRange
	}
	for i := range out[:(count+7)/8] {
		out[i] = 0
	}
	for i := 0; i < count; i++ {
		idx, sub := (start+i)/8, (start+i)%8
		if space[idx][sub].Value {
			out[i/8] |= 1 << uint(i%8)
		}
	}
	return nil
}

func writeBitLocked(space *[ioimage.Capacity][8]ioimage.BoolCell, spaceSize, addr int, value bool) error {
	if addr < 0 || addr >= spaceSize || addr >= ioimage.Capacity*8 {
		return ErrOutOfRange
	}
	idx, sub := addr/8, addr%8
	space[idx][sub] = ioimage.BoolCell{Present: true, Value: value}
	return nil
}

// readHoldingWordLocked and writeHoldingWordLocked implement the
// int_output -> int_memory -> dint_memory -> lint_memory ->
// special_functions cascade described at regBaseIntOutput et al.

func readHoldingWordLocked(b *ioimage.Binding, addr int) (uint16, error) {
	switch {
	case addr < 0:
		return 0, ErrOutOfRange
	case addr < regBaseIntMemory:
		idx := addr - regBaseIntOutput
		return b.Image.IntOutput[idx].Value, nil
	case addr < regBaseDintMemory:
		idx := addr - regBaseIntMemory
		return b.Image.IntMemory[idx].Value, nil
	case addr < regBaseLintMemory:
		off := addr - regBaseDintMemory
		idx, half := off/2, off%2
		if idx >= ioimage.Capacity {
			return 0, ErrOutOfRange
		}
		v := b.Image.DintMemory[idx].Value
		if half == 0 {
			return uint16(v >> 16), nil
		}
		return uint16(v), nil
	case addr < regBaseSpecial:
		off := addr - regBaseLintMemory
		idx, word := off/4, off%4
		if idx >= ioimage.Capacity {
			return 0, ErrOutOfRange
		}
		v := b.Image.LintMemory[idx].Value
		return uint16(v >> uint(48-word*16)), nil
	default:
		off := addr - regBaseSpecial
		idx, word := off/4, off%4
		if idx >= ioimage.Capacity {
			return 0, ErrOutOfRange
		}
		v := uint64(b.Image.SpecialFunctions[idx].Value)
		return uint16(v >> uint(48-word*16)), nil
	}
}

func writeHoldingWordLocked(b *ioimage.Binding, addr int, value uint16) error {
	switch {
	case addr < 0:
		return ErrOutOfRange
	case addr < regBaseIntMemory:
		idx := addr - regBaseIntOutput
		if idx >= ioimage.Capacity {
			return ErrOutOfRange
		}
		b.Image.IntOutput[idx] = ioimage.WordCell{Present: true, Value: value}
	case addr < regBaseDintMemory:
		idx := addr - regBaseIntMemory
		if idx >= ioimage.Capacity {
			return ErrOutOfRange
		}
		b.Image.IntMemory[idx] = ioimage.WordCell{Present: true, Value: value}
	case addr < regBaseLintMemory:
		off := addr - regBaseDintMemory
		idx, half := off/2, off%2
		if idx >= ioimage.Capacity {
			return ErrOutOfRange
		}
		cell := &b.Image.DintMemory[idx]
		if half == 0 {
			cell.Value = (cell.Value &^ 0xFFFF0000) | uint32(value)<<16
		} else {
			cell.Value = (cell.Value &^ 0x0000FFFF) | uint32(value)
		}
		cell.Present = true
	case addr < regBaseSpecial:
		off := addr - regBaseLintMemory
		idx, word := off/4, off%4
		if idx >= ioimage.Capacity {
			return ErrOutOfRange
		}
		cell := &b.Image.LintMemory[idx]
		shift := uint(48 - word*16)
		cell.Value = (cell.Value &^ (uint64(0xFFFF) << shift)) | uint64(value)<<shift
		cell.Present = true
	default:
		off := addr - regBaseSpecial
		idx, word := off/4, off%4
		if idx >= ioimage.Capacity {
			return ErrOutOfRange
		}
		cell := &b.Image.SpecialFunctions[idx]
		shift := uint(48 - word*16)
		v := uint64(cell.Value)
		v = (v &^ (uint64(0xFFFF) << shift)) | uint64(value)<<shift
		cell.Value = int64(v)
		cell.Present = true
	}
	return nil
}
