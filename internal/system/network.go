package system

import (
	"context"
	"net"
	"os"
	"strings"

	"github.com/rook-computer/pipanel/internal/logging"
)

// HostIdentity reports the host's primary IPv4 address and hostname for
// the status screen. It asks `hostname -I` first and falls back to the
// interface table when the command is unavailable.
type HostIdentity struct {
	Runner         Runner
	Hostname       func() (string, error)
	InterfaceAddrs func() ([]net.Addr, error)
	Logger         logging.Logger
}

func NewHostIdentity(r Runner, logger logging.Logger) *HostIdentity {
	return &HostIdentity{
		Runner:         r,
		Hostname:       os.Hostname,
		InterfaceAddrs: net.InterfaceAddrs,
		Logger:         logger,
	}
}

// Identity never fails; unknown parts come back as "-".
func (h *HostIdentity) Identity(ctx context.Context) (string, string) {
	return h.IPv4(ctx), h.name()
}

func (h *HostIdentity) IPv4(ctx context.Context) string {
	if h.Runner != nil {
		stdout, stderr, err := h.Runner.Run(ctx, "hostname", "-I")
		if err == nil {
			if ip := firstIPv4(strings.Fields(stdout)); ip != "" {
				return ip
			}
		} else {
			h.debugf("hostname -I failed: %v: %s", err, strings.TrimSpace(stderr))
		}
	}

	if h.InterfaceAddrs != nil {
		addrs, err := h.InterfaceAddrs()
		if err != nil {
			h.debugf("interface addrs: %v", err)
			return "-"
		}
		var candidates []string
		for _, a := range addrs {
			if ipn, ok := a.(*net.IPNet); ok && !ipn.IP.IsLoopback() {
				candidates = append(candidates, ipn.IP.String())
			}
		}
		if ip := firstIPv4(candidates); ip != "" {
			return ip
		}
	}
	return "-"
}

func (h *HostIdentity) name() string {
	if h.Hostname == nil {
		return "-"
	}
	name, err := h.Hostname()
	if err != nil || strings.TrimSpace(name) == "" {
		return "-"
	}
	return strings.TrimSpace(name)
}

func (h *HostIdentity) debugf(format string, args ...interface{}) {
	if h.Logger != nil {
		h.Logger.Debugf("system", format, args...)
	}
}

func firstIPv4(fields []string) string {
	for _, f := range fields {
		if ip := net.ParseIP(f); ip != nil && ip.To4() != nil {
			return ip.String()
		}
	}
	return ""
}
