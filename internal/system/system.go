// Package system wraps process execution and host facts the panel needs.
package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rook-computer/pipanel/internal/logging"
)

const stderrTail = 4096

type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (stdout, stderr string, err error)
}

type NoopRunner struct{}

func (NoopRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	return "", "", nil
}

// ShellRunner executes commands, optionally through sudo, resolving them via
// PATH. It returns stdout, the tail of stderr, and an error if the command
// exits non-zero.
type ShellRunner struct {
	Sudo   bool
	Logger logging.Logger
}

func (r ShellRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	name, fullArgs := cmd, args
	if r.Sudo {
		name, fullArgs = "sudo", append([]string{cmd}, args...)
	}
	if r.Logger != nil {
		r.Logger.Debugf("system", "exec %s %s", name, strings.Join(fullArgs, " "))
	}

	c := exec.CommandContext(ctx, name, fullArgs...)
	var outBuf bytes.Buffer
	errBuf := &ringBuffer{max: stderrTail}
	c.Stdout = &outBuf
	c.Stderr = errBuf
	err := c.Run()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return outBuf.String(), errBuf.String(), fmt.Errorf("exit %d: %w", exitErr.ExitCode(), err)
		}
		return outBuf.String(), errBuf.String(), err
	}
	return outBuf.String(), errBuf.String(), nil
}

// ringBuffer keeps only the last max bytes written to it.
type ringBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (r *ringBuffer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.max <= 0 {
		return len(p), nil
	}
	if len(p) >= r.max {
		r.buf = append(r.buf[:0], p[len(p)-r.max:]...)
		return len(p), nil
	}
	if len(r.buf)+len(p) > r.max {
		drop := len(r.buf) + len(p) - r.max
		r.buf = append(r.buf[drop:], p...)
		return len(p), nil
	}
	r.buf = append(r.buf, p...)
	return len(p), nil
}

func (r *ringBuffer) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return string(r.buf)
}
