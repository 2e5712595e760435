package modbus

import (
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/openplc-go/runtime/logging"
)

// Server accepts Modbus/TCP clients on one listening socket and dispatches
// each connection's requests to Strategy (reads) and Writer (writes),
// mirroring startServer/waitForClient/handleConnections in the original
// runtime's server.cpp: one accept loop, one worker goroutine per
// connection, cooperative shutdown via runFlag.
type Server struct {
	Address  string
	Port     int
	Strategy *Strategy
	// Writer receives every FC 5/6/15/16 write; set this to a
	// *WriteCoalescer so concurrent connections' writes are coalesced
	// under fewer buffer-lock acquisitions (SPEC_FULL.md §4.k).
	Writer Writer
	Log    logging.Logger
}

// Run listens and serves connections until runFlag clears. It always
// returns after the listener is closed; in-flight connections are given
// the chance to observe runFlag and exit on their own. Writer is closed
// once the accept loop returns, if it implements io.Closer.
func (s *Server) Run(runFlag *atomic.Bool) error {
	if closer, ok := s.Writer.(io.Closer); ok {
		defer closer.Close()
	}

	addr := fmt.Sprintf("%s:%d", s.Address, s.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("modbus: listen %s: %w", addr, err)
	}

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if !runFlag.Load() {
					ln.Close()
					return
				}
			case <-stop:
				return
			}
		}
	}()
	defer close(stop)

	s.Log.Info().Str("address", addr).Log("modbus slave listening")

	for runFlag.Load() {
		conn, err := ln.Accept()
		if err != nil {
			if !runFlag.Load() {
				break
			}
			s.Log.Warning().Err(err).Log("modbus slave accept failed")
			continue
		}
		go s.handleConnection(conn, runFlag)
	}

	return nil
}

func (s *Server) handleConnection(conn net.Conn, runFlag *atomic.Bool) {
	defer conn.Close()

	buffer := make([]byte, NetBufferSize)
	for runFlag.Load() {
		n, err := conn.Read(buffer)
		if err != nil || n <= 0 {
			if err != nil && err != io.EOF {
				s.Log.Warning().Err(err).Log("modbus connection read failed")
			}
			return
		}

		respLen := ProcessMessage(buffer, n, s.Strategy, s.Writer)
		if _, err := conn.Write(buffer[:respLen]); err != nil {
			s.Log.Warning().Err(err).Log("modbus connection write failed")
			return
		}
	}
}
