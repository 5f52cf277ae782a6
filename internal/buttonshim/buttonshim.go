// Package buttonshim drives the Pimoroni Button SHIM: five buttons and one
// APA102 RGB pixel behind a TCA9554A I/O expander on the I2C bus.
package buttonshim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/rook-computer/pipanel/internal/buttons"
	"github.com/rook-computer/pipanel/internal/indicator"
	"github.com/rook-computer/pipanel/internal/logging"
)

const (
	Addr = 0x3F

	regInput    = 0x00
	regOutput   = 0x01
	regPolarity = 0x02
	regConfig   = 0x03

	pinLEDClock = 6
	pinLEDData  = 7

	// Pins 0..4 are inputs, the LED pins are outputs.
	configInputs = 0b00011111

	chunkSize = 32

	DefaultBrightness   = 15
	DefaultPollInterval = 20 * time.Millisecond
)

// Shim is both a buttons.Source and an indicator.Indicator.
type Shim struct {
	Logger       logging.Logger
	PollInterval time.Duration

	mu         sync.Mutex
	dev        *i2c.Dev
	output     byte
	brightness byte

	ch     chan buttons.Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Open configures the expander and returns a ready Shim. brightness is the
// APA102 global brightness, 0..31.
func Open(bus i2c.Bus, brightness uint8, logger logging.Logger) (*Shim, error) {
	if brightness > 31 {
		return nil, fmt.Errorf("buttonshim: brightness %d out of range 0..31", brightness)
	}
	s := &Shim{
		Logger:       logger,
		PollInterval: DefaultPollInterval,
		dev:          &i2c.Dev{Bus: bus, Addr: Addr},
		brightness:   brightness,
		ch:           make(chan buttons.Event, 16),
	}
	for _, w := range [][]byte{
		{regConfig, configInputs},
		{regPolarity, 0x00},
		{regOutput, 0x00},
	} {
		if err := s.dev.Tx(w, nil); err != nil {
			return nil, fmt.Errorf("buttonshim: setup register 0x%02x: %w", w[0], err)
		}
	}
	return s, nil
}

// SetColor bit-bangs an APA102 frame through the expander's output register.
func (s *Shim) SetColor(c indicator.Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	queue := encodeFrame(s.output, s.brightness, c)
	for start := 0; start < len(queue); start += chunkSize {
		end := min(start+chunkSize, len(queue))
		w := append([]byte{regOutput}, queue[start:end]...)
		if err := s.dev.Tx(w, nil); err != nil {
			return fmt.Errorf("buttonshim: write pixel: %w", err)
		}
	}
	s.output = queue[len(queue)-1]
	return nil
}

// encodeFrame returns the sequence of output register values that clocks
// out start frame, one LED frame and end frame.
func encodeFrame(output byte, brightness byte, c indicator.Color) []byte {
	queue := make([]byte, 0, 9*8*3)
	state := output
	setBit := func(pin uint, on bool) {
		if on {
			state |= 1 << pin
		} else {
			state &^= 1 << pin
		}
		queue = append(queue, state)
	}
	writeByte := func(b byte) {
		for i := 0; i < 8; i++ {
			setBit(pinLEDData, b&0x80 != 0)
			setBit(pinLEDClock, true)
			b <<= 1
			setBit(pinLEDClock, false)
		}
	}

	for i := 0; i < 4; i++ {
		writeByte(0)
	}
	writeByte(0xE0 | brightness&0x1F)
	writeByte(c.Blue)
	writeByte(c.Green)
	writeByte(c.Red)
	writeByte(0)
	return queue
}

// Start polls the input register and emits a press on every 1->0 edge.
func (s *Shim) Start(ctx context.Context) error {
	if s.PollInterval <= 0 {
		s.PollInterval = DefaultPollInterval
	}
	initial, err := s.readInputs()
	if err != nil {
		return err
	}
	pollCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.wg.Add(1)
	go s.poll(pollCtx, initial)
	return nil
}

func (s *Shim) poll(ctx context.Context, last byte) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		current, err := s.readInputs()
		if err != nil {
			if s.Logger != nil {
				s.Logger.Errorf("buttonshim", "read inputs: %v", err)
			}
			continue
		}
		for _, ev := range pressedSince(last, current, time.Now()) {
			select {
			case s.ch <- ev:
			case <-ctx.Done():
				return
			}
		}
		last = current
	}
}

// pressedSince reports buttons whose line went from high to low.
func pressedSince(last, current byte, at time.Time) []buttons.Event {
	var events []buttons.Event
	for _, b := range buttons.All {
		mask := byte(1) << uint(b)
		if last&mask != 0 && current&mask == 0 {
			events = append(events, buttons.Event{Button: b, At: at})
		}
	}
	return events
}

func (s *Shim) readInputs() (byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := make([]byte, 1)
	if err := s.dev.Tx([]byte{regInput}, r); err != nil {
		return 0, fmt.Errorf("buttonshim: read input register: %w", err)
	}
	return r[0], nil
}

func (s *Shim) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	return nil
}

func (s *Shim) Events() <-chan buttons.Event { return s.ch }

var (
	_ buttons.Source      = (*Shim)(nil)
	_ indicator.Indicator = (*Shim)(nil)
)
