//go:build !unix && !windows

package runner

import (
	"os"
	"os/exec"
)

func configure(cmd *exec.Cmd) {}

func terminate(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
