//go:build !linux

package buttons

import (
	"context"
	"errors"

	"github.com/rook-computer/pipanel/internal/logging"
)

// KeyboardSource needs Linux evdev; elsewhere Start always fails.
type KeyboardSource struct {
	Logger logging.Logger
	ch     chan Event
}

func NewKeyboardSource(logger logging.Logger) *KeyboardSource {
	return &KeyboardSource{Logger: logger, ch: make(chan Event)}
}

func (k *KeyboardSource) Start(ctx context.Context) error {
	return errors.New("keyboard: evdev input is only supported on linux")
}

func (k *KeyboardSource) Stop() error          { return nil }
func (k *KeyboardSource) Events() <-chan Event { return k.ch }
