package service

import (
	"sync/atomic"

	"github.com/openplc-go/runtime/modbus"
)

// ModbusSlave adapts a modbus.Server to the Descriptor capability set,
// matching service_definition's {name, start} pairing for the
// "modbusslave" entry in the original runtime's service registry.
type ModbusSlave struct {
	Server *modbus.Server
}

// Name satisfies Descriptor.
func (s *ModbusSlave) Name() string { return "modbusslave" }

// Start blocks, serving Modbus/TCP clients, until runFlag clears.
func (s *ModbusSlave) Start(runFlag *atomic.Bool) error {
	return s.Server.Run(runFlag)
}
