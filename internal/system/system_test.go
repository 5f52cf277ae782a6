package system

import (
	"context"
	"errors"
	"net"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	stdout string
	stderr string
	err    error
	calls  [][]string
}

func (r *scriptedRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	r.calls = append(r.calls, append([]string{cmd}, args...))
	return r.stdout, r.stderr, r.err
}

func TestRingBuffer_KeepsTail(t *testing.T) {
	rb := &ringBuffer{max: 8}
	_, _ = rb.Write([]byte("hello "))
	_, _ = rb.Write([]byte("world"))
	assert.Equal(t, "lo world", rb.String())

	_, _ = rb.Write([]byte("0123456789"))
	assert.Equal(t, "23456789", rb.String())
}

func TestShellRunner_CapturesOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	r := ShellRunner{}

	stdout, _, err := r.Run(context.Background(), "sh", "-c", "echo ok")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", stdout)

	_, stderr, err := r.Run(context.Background(), "sh", "-c", "echo boom >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exit 3")
	assert.Equal(t, "boom", strings.TrimSpace(stderr))
}

func TestShellRunner_MissingCommand(t *testing.T) {
	_, _, err := ShellRunner{}.Run(context.Background(), "pipanel-no-such-command")
	require.Error(t, err)
}

func TestHostIdentity_FromHostnameCommand(t *testing.T) {
	r := &scriptedRunner{stdout: "192.168.1.20 172.17.0.1 fd00::2 \n"}
	h := &HostIdentity{
		Runner:   r,
		Hostname: func() (string, error) { return "pihole\n", nil },
	}

	ip, host := h.Identity(context.Background())

	assert.Equal(t, "192.168.1.20", ip)
	assert.Equal(t, "pihole", host)
	assert.Equal(t, [][]string{{"hostname", "-I"}}, r.calls)
}

func TestHostIdentity_FallsBackToInterfaces(t *testing.T) {
	h := &HostIdentity{
		Runner:   &scriptedRunner{err: errors.New("not found")},
		Hostname: func() (string, error) { return "", errors.New("no name") },
		InterfaceAddrs: func() ([]net.Addr, error) {
			return []net.Addr{
				&net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)},
				&net.IPNet{IP: net.ParseIP("fe80::1"), Mask: net.CIDRMask(64, 128)},
				&net.IPNet{IP: net.IPv4(10, 1, 2, 3), Mask: net.CIDRMask(24, 32)},
			}, nil
		},
	}

	ip, host := h.Identity(context.Background())

	assert.Equal(t, "10.1.2.3", ip)
	assert.Equal(t, "-", host)
}

func TestHostIdentity_Unknown(t *testing.T) {
	h := &HostIdentity{
		Runner:         &scriptedRunner{stdout: "\n"},
		InterfaceAddrs: func() ([]net.Addr, error) { return nil, errors.New("boom") },
	}
	ip, host := h.Identity(context.Background())
	assert.Equal(t, "-", ip)
	assert.Equal(t, "-", host)
}
