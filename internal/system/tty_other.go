//go:build !linux

package system

import (
	"errors"

	"github.com/rook-computer/pipanel/internal/logging"
)

type Console struct {
	Logger logging.Logger
}

func (Console) EnterGraphics() error {
	return errors.New("tty: console modes are only supported on linux")
}

func (Console) RestoreText() error { return nil }
