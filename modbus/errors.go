// Package modbus implements the Modbus/TCP slave: wire framing, the
// function-code dispatch table, the indexed address-space mapping onto
// the I/O image, and the TCP accept/connection loop that serves it.
package modbus

// Function codes supported by the slave, matching the MB_FC_* constants
// in the original runtime's slave.cpp.
const (
	FuncReadCoils              = 1
	FuncReadDiscreteInputs     = 2
	FuncReadHoldingRegisters   = 3
	FuncReadInputRegisters     = 4
	FuncWriteCoil              = 5
	FuncWriteRegister          = 6
	FuncWriteMultipleCoils     = 15
	FuncWriteMultipleRegisters = 16
)

// Exception codes, matching the ERR_* constants in slave.cpp.
const (
	ExcIllegalFunction    = 1
	ExcIllegalDataAddress = 2
	ExcIllegalDataValue   = 3
	ExcSlaveDeviceFailure = 4
	ExcSlaveDeviceBusy    = 6
)

// NetBufferSize is the fixed read-buffer capacity per connection, matching
// NET_BUFFER_SIZE in the original runtime's server.cpp.
const NetBufferSize = 10000
