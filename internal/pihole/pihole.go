// Package pihole controls the blocking state of the local Pi-hole through
// its command line tool.
package pihole

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rook-computer/pipanel/internal/logging"
	"github.com/rook-computer/pipanel/internal/system"
)

const DefaultCommand = "pihole"

// Service runs `pihole disable [dur]` and `pihole enable`. Output is not
// parsed; a failing command comes back as an error carrying the stderr tail.
type Service struct {
	Runner  system.Runner
	Command string
	Logger  logging.Logger
}

func New(r system.Runner, command string, logger logging.Logger) *Service {
	if command == "" {
		command = DefaultCommand
	}
	return &Service{Runner: r, Command: command, Logger: logger}
}

// DisableFor disables blocking for d, rounded down to whole seconds.
func (s *Service) DisableFor(ctx context.Context, d time.Duration) error {
	secs := int(d / time.Second)
	if secs < 1 {
		return fmt.Errorf("pihole disable: duration %s is shorter than 1s", d)
	}
	return s.run(ctx, "disable", fmt.Sprintf("%ds", secs))
}

func (s *Service) Disable(ctx context.Context) error {
	return s.run(ctx, "disable")
}

func (s *Service) Enable(ctx context.Context) error {
	return s.run(ctx, "enable")
}

func (s *Service) run(ctx context.Context, args ...string) error {
	if s.Logger != nil {
		s.Logger.Infof("pihole", "%s %s", s.Command, strings.Join(args, " "))
	}
	_, stderr, err := s.Runner.Run(ctx, s.Command, args...)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w: %s", s.Command, strings.Join(args, " "), err, strings.TrimSpace(stderr))
	}
	return nil
}
