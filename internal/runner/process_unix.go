//go:build unix

package runner

import (
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

func configure(cmd *exec.Cmd) {}

// terminate sends SIGTERM, the same request a service manager would send.
func terminate(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGTERM)
}
