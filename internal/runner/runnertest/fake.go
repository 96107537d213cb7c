// Package runnertest provides a scripted runner.StartFunc for tests of code
// built on runner.Supervisor.
package runnertest

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"website-launcher/internal/runner"
)

// Behavior scripts what a fake child does.
type Behavior struct {
	// Output lines are written as soon as the child starts.
	Output []string
	// ExitCode is the status returned when the child finishes on its own.
	ExitCode int
	// StartErr makes the start itself fail.
	StartErr error
	// Block keeps the child running until it is terminated or killed.
	Block bool
	// IgnoreTerminate makes a blocking child survive Terminate.
	IgnoreTerminate bool
}

// Starter records every command it starts and the signals sent to them.
// Commands without a scripted behavior exit 0 immediately.
type Starter struct {
	Behaviors map[string]Behavior

	mu      sync.Mutex
	started []runner.Command
	events  []string
	running chan string
}

// NewStarter returns a Starter scripted by command string (runner.Command.String()).
func NewStarter(behaviors map[string]Behavior) *Starter {
	return &Starter{Behaviors: behaviors, running: make(chan string, 64)}
}

// Start implements runner.StartFunc.
func (s *Starter) Start(c runner.Command, out io.Writer) (runner.Process, error) {
	key := c.String()
	b := s.Behaviors[key]

	s.mu.Lock()
	s.started = append(s.started, c)
	s.events = append(s.events, "start "+key)
	s.mu.Unlock()

	if b.StartErr != nil {
		return nil, b.StartErr
	}
	for _, line := range b.Output {
		fmt.Fprintln(out, line)
	}

	p := &process{starter: s, key: key, behavior: b, exit: make(chan error, 1)}
	if !b.Block {
		p.finish(b.ExitCode)
	}
	select {
	case s.running <- key:
	default:
	}
	return p, nil
}

// Running receives the key of every started child; use it to wait until a
// blocking child is up before interrupting it.
func (s *Starter) Running() <-chan string {
	return s.running
}

// Started returns the commands started so far.
func (s *Starter) Started() []runner.Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]runner.Command(nil), s.started...)
}

// Events returns "start", "terminate" and "kill" events in order.
func (s *Starter) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func (s *Starter) record(event string) {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
}

type process struct {
	starter  *Starter
	key      string
	behavior Behavior

	once sync.Once
	exit chan error
}

func (p *process) finish(code int) {
	p.once.Do(func() {
		if code == 0 {
			p.exit <- nil
			return
		}
		p.exit <- &runner.ExitError{Command: p.key, Code: code, Err: errors.New("fake exit")}
	})
}

func (p *process) Pid() int { return 4242 }

func (p *process) Wait() error { return <-p.exit }

func (p *process) Terminate() error {
	p.starter.record("terminate " + p.key)
	if !p.behavior.IgnoreTerminate {
		p.finish(0)
	}
	return nil
}

func (p *process) Kill() error {
	p.starter.record("kill " + p.key)
	p.finish(137)
	return nil
}
