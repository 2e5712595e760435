package service

import (
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-utilpkg/logiface"
	"github.com/openplc-go/runtime/ioimage"
	"github.com/openplc-go/runtime/logging"
	"github.com/openplc-go/runtime/modbus"
)

func TestModbusSlave_Name(t *testing.T) {
	strategy := modbus.NewStrategy(ioimage.NewBinding(50_000_000), modbus.DefaultSpaceConfig())
	srv := &modbus.Server{
		Address:  "127.0.0.1",
		Port:     0,
		Strategy: strategy,
		Writer:   modbus.NewWriteCoalescer(strategy, 1, 0),
		Log:      logging.New(logiface.LevelError),
	}
	d := &ModbusSlave{Server: srv}

	if d.Name() != "modbusslave" {
		t.Fatalf("Name() = %q, want modbusslave", d.Name())
	}
}

func TestModbusSlave_StartAcceptsConnections(t *testing.T) {
	strategy := modbus.NewStrategy(ioimage.NewBinding(50_000_000), modbus.DefaultSpaceConfig())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("net.Listen: %v", err)
	}
	addr := ln.Addr().(*net.TCPAddr)
	ln.Close()

	srv := &modbus.Server{
		Address:  "127.0.0.1",
		Port:     addr.Port,
		Strategy: strategy,
		Writer:   modbus.NewWriteCoalescer(strategy, 1, 0),
		Log:      logging.New(logiface.LevelError),
	}
	d := &ModbusSlave{Server: srv}

	var runFlag atomic.Bool
	runFlag.Store(true)

	done := make(chan error, 1)
	go func() { done <- d.Start(&runFlag) }()

	time.Sleep(50 * time.Millisecond)

	conn, err := net.Dial("tcp", addr.String())
	if err != nil {
		t.Fatalf("net.Dial: %v", err)
	}
	conn.Close()

	runFlag.Store(false)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after runFlag cleared")
	}
}
