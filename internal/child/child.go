// Package child spawns a server process and exposes its stdio as the two
// protocol streams.
package child

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// Process is a running child. Stdin carries client messages to it and
// Stdout carries its messages back. The child's stderr is inherited.
type Process struct {
	Stdin  io.WriteCloser
	Stdout *bufio.Reader

	cmd *exec.Cmd
}

// Spawn starts path with args.
func Spawn(path string, args ...string) (*Process, error) {
	cmd := exec.Command(path, args...)
	cmd.Stderr = os.Stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("child: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("child: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("child: start %s: %w", path, err)
	}
	return &Process{
		Stdin:  stdin,
		Stdout: bufio.NewReader(stdout),
		cmd:    cmd,
	}, nil
}

func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Wait closes the child's stdin, which a well-behaved server treats as a
// clean shutdown, and waits for it to exit.
func (p *Process) Wait() error {
	if err := p.Stdin.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		return fmt.Errorf("child: close stdin: %w", err)
	}
	if err := p.cmd.Wait(); err != nil {
		return fmt.Errorf("child: wait: %w", err)
	}
	return nil
}

// Kill terminates the child without waiting for a clean shutdown.
func (p *Process) Kill() error {
	if err := p.cmd.Process.Kill(); err != nil {
		return err
	}
	_ = p.cmd.Wait()
	return nil
}
