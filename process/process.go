/*
Package process launches the external converter and reports its exit.

Exits are published on an event stream rather than returned from the call that
started the process. A caller subscribes, starts the process and then waits
for the Exit carrying its process id, so any number of conversions can be in
flight at once.
*/
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrProcess is returned when the converter cannot be started or exits with a
// non-zero status.
var ErrProcess = errors.New("process: converter failed")

// Spec describes one invocation.
type Spec struct {
	Path string
	Args []string
	// Dir is the working directory the converter writes its output to.
	Dir string
}

// Exit is published when a started process terminates.
type Exit struct {
	PID  int
	Code int
	// Stderr holds whatever the process wrote to standard error.
	Stderr []byte
	// Wait is set when waiting on the process failed for a reason other
	// than a non-zero exit.
	Wait error
}

// Err returns an error wrapping ErrProcess unless the process exited cleanly.
func (e Exit) Err() error {
	if e.Wait != nil {
		return fmt.Errorf("%w: pid %d: %v", ErrProcess, e.PID, e.Wait)
	}
	if e.Code != 0 {
		msg := strings.TrimSpace(string(e.Stderr))
		if msg == "" {
			return fmt.Errorf("%w: pid %d exited with status %d", ErrProcess, e.PID, e.Code)
		}
		return fmt.Errorf("%w: pid %d exited with status %d: %s", ErrProcess, e.PID, e.Code, msg)
	}
	return nil
}

// Launcher starts processes and publishes their exits.
type Launcher interface {
	// Subscribe returns a channel receiving every Exit published after the
	// call, and a function that ends the subscription.
	Subscribe() (<-chan Exit, func())
	// Start launches a process and returns its id without waiting for it.
	Start(ctx context.Context, spec Spec) (int, error)
}

type subscriber struct {
	ch   chan Exit
	done chan struct{}
}

// Hub fans published exits out to subscribers. It is embedded by Launcher
// implementations.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

func (h *Hub) Subscribe() (<-chan Exit, func()) {
	s := &subscriber{
		ch:   make(chan Exit, 1),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[*subscriber]struct{})
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, s)
			h.mu.Unlock()
			close(s.done)
		})
	}
}

// Publish delivers e to every current subscriber, blocking until each has
// either received it or unsubscribed.
func (h *Hub) Publish(e Exit) {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(subs))
	for _, s := range subs {
		go func(s *subscriber) {
			defer wg.Done()
			select {
			case s.ch <- e:
			case <-s.done:
			}
		}(s)
	}
	wg.Wait()
}

// Exec is a Launcher running real processes with os/exec.
type Exec struct {
	Hub
}

// NewExec returns a Launcher for real processes.
func NewExec() *Exec {
	return &Exec{}
}

func (x *Exec) Start(ctx context.Context, spec Spec) (int, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	cmd.Dir = spec.Dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrProcess, err)
	}

	pid := cmd.Process.Pid
	go func() {
		e := Exit{PID: pid}
		if err := cmd.Wait(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				e.Code = exitErr.ExitCode()
			} else {
				e.Wait = err
			}
		}
		e.Stderr = stderr.Bytes()
		x.Publish(e)
	}()

	return pid, nil
}

// Run subscribes to l, starts spec and waits for the exit event carrying the
// id of the started process.
func Run(ctx context.Context, l Launcher, spec Spec) (Exit, error) {
	exits, cancel := l.Subscribe()
	defer cancel()

	pid, err := l.Start(ctx, spec)
	if err != nil {
		if !errors.Is(err, ErrProcess) {
			err = fmt.Errorf("%w: %v", ErrProcess, err)
		}
		return Exit{}, err
	}

	for {
		select {
		case e := <-exits:
			if e.PID == pid {
				return e, e.Err()
			}
		case <-ctx.Done():
			return Exit{}, ctx.Err()
		}
	}
}
