package runner

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"time"
)

// drainTimeout bounds how long Wait keeps relaying after the child exited.
// Grandchildren that inherited the pipe can otherwise hold it open forever.
const drainTimeout = 2 * time.Second

// execProcess is a Process backed by a real child.
type execProcess struct {
	cmd     *exec.Cmd
	pipe    *os.File      // read end of the combined stdout/stderr pipe
	relayed chan struct{} // closed once relay has seen EOF
}

// Exec starts c as a real process. Stdout and stderr share one pipe so
// lines arrive in the order the child wrote them; stdin is inherited.
func Exec(c Command, out io.Writer) (Process, error) {
	cmd := exec.Command(c.Name, c.Args...)
	cmd.Dir = c.Dir
	// Keep PATH and friends; only add what the command asks for
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	// npm may prompt, so the terminal stays attached
	cmd.Stdin = os.Stdin

	// One pipe for both streams
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd.Stdout = pw
	cmd.Stderr = pw
	// Platform specific process attributes (process group on Windows)
	configure(cmd)

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return nil, err
	}
	// The child holds its own copy of the write end.
	pw.Close()

	// Relay output in the background until the pipe closes
	p := &execProcess{cmd: cmd, pipe: pr, relayed: make(chan struct{})}
	go p.relay(out)
	return p, nil
}

// relay copies the child's output to out a line at a time so partial
// lines from a slow child still show up once they are complete.
func (p *execProcess) relay(out io.Writer) {
	defer close(p.relayed)
	r := bufio.NewReader(p.pipe)
	for {
		line, err := r.ReadBytes('\n')
		// The last line may come without a newline
		if len(line) > 0 {
			_, _ = out.Write(line)
		}
		if err != nil {
			return
		}
	}
}

// Pid returns the child's process id.
func (p *execProcess) Pid() int {
	return p.cmd.Process.Pid
}

// Wait reaps the child, then gives the relay up to drainTimeout to flush.
func (p *execProcess) Wait() error {
	err := p.cmd.Wait()

	// Output written just before exit may still be in the pipe

	select {
	case <-p.relayed:
	case <-time.After(drainTimeout):
	}
	p.pipe.Close()
	return err
}

// Terminate sends the platform's graceful stop request.
func (p *execProcess) Terminate() error {
	return terminate(p.cmd.Process)
}

// Kill stops the child immediately.
func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
