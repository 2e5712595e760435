package service

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-utilpkg/logiface"
	"github.com/openplc-go/runtime/logging"
)

func TestInteractive_StopClearsRunFlag(t *testing.T) {
	in := strings.NewReader("run\nstop\n")
	s := &Interactive{In: in, Log: logging.New(logiface.LevelError)}

	var runFlag atomic.Bool
	runFlag.Store(true)

	done := make(chan error, 1)
	go func() { done <- s.Start(&runFlag) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return after \"stop\"")
	}
	if runFlag.Load() {
		t.Fatal("runFlag still set after \"stop\" command")
	}
}

func TestInteractive_ExitsOnEOFWithoutStop(t *testing.T) {
	in := strings.NewReader("run\n")
	s := &Interactive{In: in, Log: logging.New(logiface.LevelError)}

	var runFlag atomic.Bool
	runFlag.Store(true)

	done := make(chan error, 1)
	go func() { done <- s.Start(&runFlag) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Start did not return on EOF")
	}
}
