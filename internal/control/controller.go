// Package control implements the panel's button actions and the generation
// token that lets a newer action supersede an older one.
package control

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rook-computer/pipanel/internal/clock"
	"github.com/rook-computer/pipanel/internal/indicator"
	"github.com/rook-computer/pipanel/internal/logging"
	"github.com/rook-computer/pipanel/internal/stats"
)

const (
	blinkHalfPeriod = 500 * time.Millisecond
	ackInterval     = 300 * time.Millisecond
	ackBlinks       = 2

	DefaultStatsHold = 10 * time.Second
)

// Renderer is the display side of the controller.
type Renderer interface {
	RenderStatus(ip, host string, snap stats.Snapshot) error
	RenderCountdown(seconds int) error
	Blank() error
}

type StatsSource interface {
	Fetch(ctx context.Context) stats.Snapshot
}

// HostInfo reports the address and name shown on the status screen.
type HostInfo interface {
	Identity(ctx context.Context) (ip, host string)
}

// Service is the managed DNS sinkhole.
type Service interface {
	DisableFor(ctx context.Context, d time.Duration) error
	Disable(ctx context.Context) error
	Enable(ctx context.Context) error
}

// Controller runs one action at a time on the caller's goroutine. Pause is
// the yield point between blink phases; the event loop supplies one that
// also accepts new presses. Without it the controller waits on Clock.
type Controller struct {
	Generation *Generation
	Indicator  indicator.Indicator
	Display    Renderer
	Stats      StatsSource
	Host       HostInfo
	Service    Service
	Logger     logging.Logger
	Clock      clock.Clock
	Pause      func(ctx context.Context, d time.Duration) error
	StatsHold  time.Duration
}

// Run dispatches a to the matching action.
func (c *Controller) Run(ctx context.Context, a Action, epoch uint64) error {
	switch a.Kind {
	case TimedDisable:
		return c.RunTimedDisable(ctx, a.Seconds(), epoch)
	case IndefiniteSuspend:
		return c.RunIndefiniteSuspend(ctx, epoch)
	case Enable:
		return c.RunEnable(ctx, epoch)
	case ShowStats:
		return c.RunShowStats(ctx)
	default:
		return fmt.Errorf("unknown action kind %v", a.Kind)
	}
}

// RunTimedDisable disables the service for seconds and counts down on the
// display while blinking yellow/orange. The service re-enables itself when
// its own timer runs out.
func (c *Controller) RunTimedDisable(ctx context.Context, seconds int, epoch uint64) error {
	c.callService("disable "+formatSeconds(seconds), func() error {
		return c.Service.DisableFor(ctx, time.Duration(seconds)*time.Second)
	})

	for i := 0; i < seconds; i++ {
		// A superseded countdown must not outlive its action on screen;
		// Enable and Suspend never draw.
		if !c.Generation.IsCurrent(epoch) {
			c.log().Infof("control", "Ending loop with ID %d", epoch)
			return c.render(c.Display.Blank())
		}
		remaining := seconds - i
		c.log().Infof("control", "Pi-hole disabled for %d", remaining)
		if err := c.render(c.Display.RenderCountdown(remaining)); err != nil {
			return err
		}
		if err := c.blink(ctx, indicator.Yellow, blinkHalfPeriod); err != nil {
			return err
		}
		if err := c.blink(ctx, indicator.Orange, blinkHalfPeriod); err != nil {
			return err
		}
	}

	if err := c.setColor(indicator.Off); err != nil {
		return err
	}
	if err := c.render(c.Display.Blank()); err != nil {
		return err
	}
	c.log().Infof("control", "Pi-hole re-enabled")
	return nil
}

// RunIndefiniteSuspend disables the service and blinks red until a newer
// press arrives. It never leaves the pixel red and never touches the display.
func (c *Controller) RunIndefiniteSuspend(ctx context.Context, epoch uint64) error {
	c.callService("disable", func() error { return c.Service.Disable(ctx) })

	for c.Generation.IsCurrent(epoch) {
		if err := c.blink(ctx, indicator.Red, blinkHalfPeriod); err != nil {
			return err
		}
		if err := c.setColor(indicator.Off); err != nil {
			return err
		}
		if !c.Generation.IsCurrent(epoch) {
			break
		}
		if err := c.pause(ctx, blinkHalfPeriod); err != nil {
			return err
		}
	}
	c.log().Infof("control", "Ending loop with ID %d", epoch)
	return nil
}

// RunEnable re-enables the service and acknowledges with two green blinks.
// The blinks always complete.
func (c *Controller) RunEnable(ctx context.Context, epoch uint64) error {
	c.callService("enable", func() error { return c.Service.Enable(ctx) })
	c.log().Debugf("control", "enable acknowledged for ID %d", epoch)

	for i := 0; i < ackBlinks; i++ {
		if err := c.blink(ctx, indicator.Green, ackInterval); err != nil {
			return err
		}
		if err := c.blink(ctx, indicator.Off, ackInterval); err != nil {
			return err
		}
	}
	return nil
}

// RunShowStats shows the status screen for StatsHold, then blanks it.
func (c *Controller) RunShowStats(ctx context.Context) error {
	ip, host := c.Host.Identity(ctx)
	snap := c.Stats.Fetch(ctx)

	if err := c.render(c.Display.RenderStatus(ip, host, snap)); err != nil {
		return err
	}
	hold := c.StatsHold
	if hold <= 0 {
		hold = DefaultStatsHold
	}
	if err := c.pause(ctx, hold); err != nil {
		return err
	}
	return c.render(c.Display.Blank())
}

// SelfTest cycles the pixel through red, green and blue.
func (c *Controller) SelfTest(ctx context.Context) error {
	for _, color := range []indicator.Color{indicator.Red, indicator.Green, indicator.Blue} {
		if err := c.blink(ctx, color, ackInterval); err != nil {
			return err
		}
	}
	return c.setColor(indicator.Off)
}

// Reset turns the pixel off and blanks the display.
func (c *Controller) Reset() error {
	return errors.Join(c.setColor(indicator.Off), c.render(c.Display.Blank()))
}

func (c *Controller) blink(ctx context.Context, color indicator.Color, d time.Duration) error {
	if err := c.setColor(color); err != nil {
		return err
	}
	return c.pause(ctx, d)
}

func (c *Controller) setColor(color indicator.Color) error {
	if err := c.Indicator.SetColor(color); err != nil {
		return fmt.Errorf("%w: set indicator %s: %w", ErrHardwareIO, color, err)
	}
	return nil
}

func (c *Controller) render(err error) error {
	if err != nil {
		return fmt.Errorf("%w: display: %w", ErrHardwareIO, err)
	}
	return nil
}

func (c *Controller) pause(ctx context.Context, d time.Duration) error {
	if c.Pause != nil {
		return c.Pause(ctx, d)
	}
	clk := c.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	select {
	case <-clk.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// callService runs a managed-service command. Failures are logged and
// otherwise ignored.
func (c *Controller) callService(what string, fn func() error) {
	if err := fn(); err != nil {
		c.log().Errorf("control", "pihole %s: %v", what, fmt.Errorf("%w: %w", ErrExternalCommand, err))
	}
}

func (c *Controller) log() logging.Logger {
	if c.Logger == nil {
		return logging.NoopLogger{}
	}
	return c.Logger
}

func formatSeconds(seconds int) string {
	return fmt.Sprintf("%ds", seconds)
}
