package supervisor

import (
	"errors"
	"os"
	"os/exec"
)

// ExecProcess runs a child through os/exec with stdio passed through, so
// the child's structured logs reach the same streams as the supervisor's.
type ExecProcess struct {
	cmd *exec.Cmd
}

// Command returns a Process factory for the given binary and arguments.
// Each restart builds a fresh exec.Cmd; extraEnv entries are appended to
// the inherited environment.
func Command(bin string, args []string, extraEnv []string) func() Process {
	return func() Process {
		cmd := exec.Command(bin, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(), extraEnv...)
		return &ExecProcess{cmd: cmd}
	}
}

func (p *ExecProcess) Start() error { return p.cmd.Start() }

func (p *ExecProcess) Wait() error { return p.cmd.Wait() }

func (p *ExecProcess) Signal(sig os.Signal) error {
	if p.cmd.Process == nil {
		return errors.New("child not started")
	}
	return p.cmd.Process.Signal(sig)
}

func (p *ExecProcess) Kill() error {
	if p.cmd.Process == nil {
		return errors.New("child not started")
	}
	return p.cmd.Process.Kill()
}
