// Package runner starts one child process at a time, relays its combined
// output line by line, and shuts it down in two phases when the caller's
// context is cancelled: a graceful termination request first, a kill only
// once the grace period has run out.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"website-launcher/internal/logger"
)

// ErrInterrupted is returned by Run when the context was cancelled while the
// child was still running. The child has exited by the time it is returned.
var ErrInterrupted = errors.New("interrupted by user")

// DefaultGrace is how long a child gets to exit after a termination request.
const DefaultGrace = 10 * time.Second

// DefaultSettle is how long Run waits for a pending interrupt after a child
// exited the way Ctrl+C makes it exit.
const DefaultSettle = 500 * time.Millisecond

// Command is a process to run.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the launcher's own environment.
	Env []string
}

func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// ExitError reports a child that finished on its own with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Process is a started child.
type Process interface {
	Pid() int
	// Wait blocks until the child has exited and its output has been relayed.
	Wait() error
	// Terminate asks the child to exit.
	Terminate() error
	// Kill forces the child to exit.
	Kill() error
}

// StartFunc starts c and relays its combined output to out.
type StartFunc func(c Command, out io.Writer) (Process, error)

// Hook runs alongside a started child. Its context ends when the child exits
// or the run is interrupted.
type Hook func(ctx context.Context)

// Supervisor runs commands to completion or interruption.
type Supervisor struct {
	Out   io.Writer
	Grace time.Duration
	// Settle bounds the wait for an interrupt that raced the child's exit.
	Settle time.Duration
	Start  StartFunc
}

// New returns a Supervisor that starts real processes.
func New(out io.Writer, grace time.Duration) *Supervisor {
	if grace <= 0 {
		grace = DefaultGrace
	}
	return &Supervisor{Out: out, Grace: grace, Settle: DefaultSettle, Start: Exec}
}

// Run starts c and blocks until it exits or ctx is cancelled.
//
// A clean exit returns nil and a non-zero exit returns *ExitError. On
// cancellation the child is asked to terminate, given s.Grace to comply,
// killed if it has not, and ErrInterrupted is returned.
func (s *Supervisor) Run(ctx context.Context, c Command, hooks ...Hook) error {
	logger.Debug("[DEBUG] Running command: %s (dir %s)\n", c, c.Dir)

	proc, err := s.Start(c, s.Out)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", c, err)
	}

	done := make(chan error, 1)
	go func() { done <- proc.Wait() }()

	hookCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	for _, h := range hooks {
		go h(hookCtx)
	}

	select {
	case err := <-done:
		err = exitError(c, err)
		// A terminal Ctrl+C reaches the child too, which may exit before
		// the cancellation arrives here.
		if ctx.Err() == nil && interruptedExit(err) {
			s.awaitInterrupt(ctx)
		}
		if ctx.Err() != nil {
			return ErrInterrupted
		}
		return err
	case <-ctx.Done():
	}

	cancel()
	logger.Debug("[DEBUG] Terminating %s (pid %d)\n", c, proc.Pid())
	if err := proc.Terminate(); err != nil {
		logger.Debug("[DEBUG] Termination request for pid %d failed: %v\n", proc.Pid(), err)
	}

	timer := time.NewTimer(s.grace())
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
		logger.Warn("[WARN] %s did not exit within %s. Killing it.\n", c, s.grace())
		if err := proc.Kill(); err != nil {
			logger.Error("[ERROR] Failed to kill pid %d: %v\n", proc.Pid(), err)
		}
		<-done
	}
	return ErrInterrupted
}

func (s *Supervisor) grace() time.Duration {
	if s.Grace <= 0 {
		return DefaultGrace
	}
	return s.Grace
}

// awaitInterrupt gives a signal that is already on its way up to s.Settle
// to cancel ctx.
func (s *Supervisor) awaitInterrupt(ctx context.Context) {
	settle := s.Settle
	if settle <= 0 {
		return
	}
	logger.Debug("[DEBUG] Child exited like an interrupt; waiting %s for the signal\n", settle)

	timer := time.NewTimer(settle)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Exit statuses of a child stopped by Ctrl+C.
const (
	exitSigint      = 130        // shells and node: 128 + SIGINT
	exitSignaled    = -1         // os/exec: terminated by a signal
	exitControlCWin = 0xC000013A // STATUS_CONTROL_C_EXIT
)

// interruptedExit reports whether err is the exit status Ctrl+C produces.
func interruptedExit(err error) bool {
	var ee *ExitError
	if !errors.As(err, &ee) {
		return false
	}
	return ee.Code == exitSigint || ee.Code == exitSignaled || uint32(ee.Code) == exitControlCWin
}

// exitError maps a finished child's Wait error onto *ExitError.
func exitError(c Command, err error) error {
	if err == nil {
		return nil
	}
	var re *ExitError
	if errors.As(err, &re) {
		return re
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return &ExitError{Command: c.String(), Code: ee.ExitCode(), Err: err}
	}
	return fmt.Errorf("%s failed: %w", c, err)
}
