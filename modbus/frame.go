package modbus

import "context"

// ProcessMessage parses one Modbus/TCP request already sitting in buffer
// and rewrites buffer in place with the response, returning the response
// length. buffer must have length at least NetBufferSize; size is the
// number of bytes actually read from the peer into buffer. This mirrors
// process_modbus_message in the original runtime's slave.cpp byte for
// byte, including which buffer offsets each handler touches, except that
// writeHoldingRegister (FC 6) takes the register value from the standard
// Modbus/TCP offset buffer[10:12] rather than slave.cpp's buffer+9. Reads go
// straight through strategy; writes (FC 5/6/15/16) submit through writer,
// so concurrent connections' writes can be coalesced under one buffer-lock
// acquisition (SPEC_FULL.md §4.k).
func ProcessMessage(buffer []byte, size int, strategy *Strategy, writer Writer) int {
	if size < 8 {
		return modbusError(buffer, ExcIllegalFunction)
	}

	switch buffer[7] {
	case FuncReadCoils:
		return readCoils(buffer, size, strategy)
	case FuncReadDiscreteInputs:
		return readDiscreteInputs(buffer, size, strategy)
	case FuncReadHoldingRegisters:
		return readHoldingRegisters(buffer, size, strategy)
	case FuncReadInputRegisters:
		return readInputRegisters(buffer, size, strategy)
	case FuncWriteCoil:
		return writeCoil(buffer, size, writer)
	case FuncWriteRegister:
		return writeHoldingRegister(buffer, size, writer)
	case FuncWriteMultipleCoils:
		return writeMultipleCoils(buffer, size, writer)
	case FuncWriteMultipleRegisters:
		return writeMultipleRegisters(buffer, size, writer)
	default:
		return modbusError(buffer, ExcIllegalFunction)
	}
}

func modbusError(buffer []byte, code byte) int {
	buffer[4] = 0
	buffer[5] = 3
	buffer[7] = buffer[7] | 0x80
	buffer[8] = code
	return 9
}

func mbToWord(hi, lo byte) int {
	return int(hi)<<8 | int(lo)
}

// readSizes decodes the start/count pair at buffer[8:12], common to every
// sized request. ok is false if the request is shorter than 12 bytes; in
// that case the return value is the exception response length already
// written into buffer.
func readSizes(buffer []byte, size int) (start, count, exceptionLen int, ok bool) {
	if size < 12 {
		return 0, 0, modbusError(buffer, ExcIllegalDataValue), false
	}
	return mbToWord(buffer[8], buffer[9]), mbToWord(buffer[10], buffer[11]), 0, true
}

func readSizedBytes(buffer []byte, size int) (start, count, numBytes, exceptionLen int, ok bool) {
	start, count, exceptionLen, ok = readSizes(buffer, size)
	if !ok {
		return
	}
	numBytes = count / 8
	if numBytes*8 < count {
		numBytes++
	}
	if numBytes > 255 {
		return start, count, numBytes, modbusError(buffer, ExcIllegalDataAddress), false
	}
	return start, count, numBytes, 0, true
}

func readCoils(buffer []byte, size int, strategy *Strategy) int {
	start, count, numBytes, exceptionLen, ok := readSizedBytes(buffer, size)
	if !ok {
		return exceptionLen
	}
	if 9+numBytes > len(buffer) {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	buffer[4] = byte((numBytes + 3) >> 8)
	buffer[5] = byte((numBytes + 3) & 0xFF)
	buffer[8] = byte(numBytes)

	if err := strategy.ReadCoils(start, count, buffer[9:9+numBytes]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}
	return numBytes + 9
}

func readDiscreteInputs(buffer []byte, size int, strategy *Strategy) int {
	start, count, numBytes, exceptionLen, ok := readSizedBytes(buffer, size)
	if !ok {
		return exceptionLen
	}
	if 9+numBytes > len(buffer) {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	buffer[4] = byte((numBytes + 3) >> 8)
	buffer[5] = byte((numBytes + 3) & 0xFF)
	buffer[8] = byte(numBytes)

	if err := strategy.ReadDiscreteInputs(start, count, buffer[9:9+numBytes]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}
	return numBytes + 9
}

func readHoldingRegisters(buffer []byte, size int, strategy *Strategy) int {
	start, count, exceptionLen, ok := readSizes(buffer, size)
	if !ok {
		return exceptionLen
	}

	byteDataLen := count * 2
	if byteDataLen < 0 || 9+byteDataLen > len(buffer) {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	buffer[4] = byte((byteDataLen + 3) >> 8)
	buffer[5] = byte((byteDataLen + 3) & 0xFF)
	buffer[8] = byte(byteDataLen)

	if err := strategy.ReadHoldingRegisters(start, count, buffer[9:9+byteDataLen]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}
	return byteDataLen + 9
}

func readInputRegisters(buffer []byte, size int, strategy *Strategy) int {
	start, count, exceptionLen, ok := readSizes(buffer, size)
	if !ok {
		return exceptionLen
	}

	byteDataLen := count * 2
	if byteDataLen < 0 || 9+byteDataLen > len(buffer) {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	buffer[4] = byte((byteDataLen + 3) >> 8)
	buffer[5] = byte((byteDataLen + 3) & 0xFF)
	buffer[8] = byte(byteDataLen)

	if err := strategy.ReadInputRegisters(start, count, buffer[9:9+byteDataLen]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}
	return byteDataLen + 9
}

func writeCoil(buffer []byte, size int, writer Writer) int {
	start := mbToWord(buffer[8], buffer[9])
	value := mbToWord(buffer[10], buffer[11]) != 0

	if err := writer.WriteCoil(context.Background(), start, value); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}

	buffer[4] = 0
	buffer[5] = 6
	return 12
}

func writeHoldingRegister(buffer []byte, size int, writer Writer) int {
	start := mbToWord(buffer[8], buffer[9])

	if err := writer.WriteHoldingRegister(context.Background(), start, buffer[10:12]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}

	buffer[4] = 0
	buffer[5] = 6
	return 12
}

func writeMultipleCoils(buffer []byte, size int, writer Writer) int {
	start, count, numBytes, exceptionLen, ok := readSizedBytes(buffer, size)
	if !ok {
		return exceptionLen
	}

	if size < numBytes+13 || int(buffer[12]) != numBytes {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	if err := writer.WriteCoils(context.Background(), start, count, buffer[13:13+numBytes]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}

	buffer[4] = 0
	buffer[5] = 6
	return 12
}

func writeMultipleRegisters(buffer []byte, size int, writer Writer) int {
	start, count, exceptionLen, ok := readSizes(buffer, size)
	if !ok {
		return exceptionLen
	}

	byteDataLen := count * 2
	if size < byteDataLen+13 || int(buffer[12]) != byteDataLen {
		return modbusError(buffer, ExcIllegalDataValue)
	}

	if err := writer.WriteHoldingRegisters(context.Background(), start, count, buffer[13:13+byteDataLen]); err != nil {
		return modbusError(buffer, ExcIllegalDataAddress)
	}

	buffer[4] = 0
	buffer[5] = 6
	return 12
}
