// Package processtest provides a process.Launcher that runs a function in
// place of a real process, and an in-memory stand-in for the converter.
package processtest

import (
	"context"
	"sync"

	"github.com/bodgit/vbconv/process"
)

// Launcher is a fake process.Launcher.
type Launcher struct {
	process.Hub

	// Handle runs in place of the process and returns its exit status and
	// standard error. A nil Handle exits cleanly.
	Handle func(spec process.Spec) (int, []byte)
	// Err, if set, is returned by Start.
	Err error

	mu    sync.Mutex
	pid   int
	calls []process.Spec
}

func (l *Launcher) Start(_ context.Context, spec process.Spec) (int, error) {
	if l.Err != nil {
		return 0, l.Err
	}

	l.mu.Lock()
	l.pid++
	pid := l.pid
	l.calls = append(l.calls, spec)
	handle := l.Handle
	l.mu.Unlock()

	go func() {
		e := process.Exit{PID: pid}
		if handle != nil {
			e.Code, e.Stderr = handle(spec)
		}
		l.Publish(e)
	}()

	return pid, nil
}

// Calls returns every spec started so far.
func (l *Launcher) Calls() []process.Spec {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]process.Spec(nil), l.calls...)
}
