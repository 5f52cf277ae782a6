package buttons

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"github.com/rook-computer/pipanel/internal/logging"
)

const defaultGPIODebounce = 200 * time.Millisecond

// GPIOSource reads five active-low buttons wired to GPIO pins, pulled up,
// in button order A..E. periph's host drivers must be initialized first.
type GPIOSource struct {
	Pins     []string
	Debounce time.Duration
	Logger   logging.Logger

	ch     chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewGPIOSource(pins []string, logger logging.Logger) *GPIOSource {
	return &GPIOSource{Pins: pins, Debounce: defaultGPIODebounce, Logger: logger, ch: make(chan Event, 16)}
}

func (s *GPIOSource) Start(ctx context.Context) error {
	if len(s.Pins) > len(All) {
		return fmt.Errorf("gpio: %d pins configured, at most %d buttons", len(s.Pins), len(All))
	}
	if s.Debounce <= 0 {
		s.Debounce = defaultGPIODebounce
	}
	pins := make([]gpio.PinIO, 0, len(s.Pins))
	for _, name := range s.Pins {
		pin := gpioreg.ByName(name)
		if pin == nil {
			return fmt.Errorf("gpio: no pin named %q", name)
		}
		if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return fmt.Errorf("gpio: configure %s: %w", name, err)
		}
		pins = append(pins, pin)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	for i, pin := range pins {
		s.wg.Add(1)
		go s.watch(watchCtx, All[i], pin)
	}
	return nil
}

func (s *GPIOSource) watch(ctx context.Context, button Button, pin gpio.PinIO) {
	defer s.wg.Done()
	last := time.Time{}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !pin.WaitForEdge(250 * time.Millisecond) {
			continue
		}
		now := time.Now()
		if now.Sub(last) < s.Debounce || pin.Read() != gpio.Low {
			continue
		}
		last = now
		if s.Logger != nil {
			s.Logger.Debugf("gpio", "button %s on %s", button, pin.Name())
		}
		select {
		case s.ch <- Event{Button: button, At: now}:
		case <-ctx.Done():
			return
		}
	}
}

func (s *GPIOSource) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *GPIOSource) Events() <-chan Event { return s.ch }
