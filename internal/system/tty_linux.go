//go:build linux

package system

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/pipanel/internal/logging"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

var consolePaths = []string{"/dev/tty", "/dev/tty0"}

// Console switches the active virtual terminal between text and graphics
// mode so the kernel console does not draw over the framebuffer display.
type Console struct {
	Logger logging.Logger
}

// EnterGraphics sets KD_GRAPHICS and hides the cursor.
func (c Console) EnterGraphics() error {
	err := setMode(kdGraphics)
	c.report("KD_GRAPHICS", err)
	if err == nil {
		c.report("hide cursor", writeVT("\x1b[?25l"))
	}
	return err
}

// RestoreText sets KD_TEXT and shows the cursor again.
func (c Console) RestoreText() error {
	err := setMode(kdText)
	c.report("KD_TEXT", err)
	c.report("show cursor", writeVT("\x1b[?25h"))
	return err
}

func (c Console) report(what string, err error) {
	if c.Logger == nil {
		return
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s failed: %v", what, err)
		return
	}
	c.Logger.Debugf("tty", "%s ok", what)
}

func setMode(mode int) error {
	var lastErr error
	for _, p := range consolePaths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		_ = unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("KDSETMODE %d on %s: %w", mode, p, err)
			continue
		}
		return nil
	}
	return lastErr
}

func writeVT(s string) error {
	var lastErr error
	for _, p := range consolePaths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		_ = f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return fmt.Errorf("write VT failed: %w", lastErr)
}
