package service

import (
	"bufio"
	"io"
	"strings"
	"sync/atomic"

	"github.com/openplc-go/runtime/logging"
)

// Interactive is a minimal administrative service: it reads newline-
// delimited commands from In until runFlag clears or In is exhausted.
// "stop" clears runFlag itself, giving an operator attached to the
// process's stdin a way to request shutdown; any other line is logged as
// an unrecognized command and otherwise ignored. This is deliberately thin — the original
// runtime's interactive server is not included in the retrieved
// source, only its default-enable behavior in bootstrap.cpp.
type Interactive struct {
	In  io.Reader
	Out io.Writer
	Log logging.Logger
}

// Name satisfies Descriptor.
func (s *Interactive) Name() string { return "interactive" }

// Start blocks reading lines from In, until runFlag clears or the
// reader returns EOF.
func (s *Interactive) Start(runFlag *atomic.Bool) error {
	scanner := bufio.NewScanner(s.In)
	for runFlag.Load() && scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "stop":
			runFlag.Store(false)
		case "run":
			// already running; accepted for symmetry with "stop".
		default:
			s.Log.Warning().Str("command", line).Log("interactive: unrecognized command")
		}
	}
	return scanner.Err()
}
