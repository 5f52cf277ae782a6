//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/rook-computer/pipanel/internal/logging"
)

const evKey = 0x01

// Linux input-event-codes.h
var keyButtons = map[uint16]Button{
	30: ButtonA, // KEY_A
	48: ButtonB, // KEY_B
	46: ButtonC, // KEY_C
	32: ButtonD, // KEY_D
	18: ButtonE, // KEY_E
}

// KeyboardSource maps the A..E keys of any evdev keyboard under
// /dev/input/event* to panel buttons. It is meant for bench setups
// without the button board.
type KeyboardSource struct {
	Glob   string
	Logger logging.Logger

	ch     chan Event
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewKeyboardSource(logger logging.Logger) *KeyboardSource {
	return &KeyboardSource{Glob: "/dev/input/event*", Logger: logger, ch: make(chan Event, 16)}
}

func (k *KeyboardSource) Start(ctx context.Context) error {
	paths, err := filepath.Glob(k.Glob)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("keyboard: no evdev devices found")
	}

	readCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel
	for _, path := range paths {
		k.wg.Add(1)
		go k.read(readCtx, path)
	}
	return nil
}

func (k *KeyboardSource) read(ctx context.Context, path string) {
	defer k.wg.Done()

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		if k.Logger != nil {
			k.Logger.Debugf("keyboard", "skip %s: %v", path, err)
		}
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}

		for off := 0; off+eventSize <= n; off += eventSize {
			rec := buf[off : off+eventSize]
			typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
			code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
			value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
			button, ok := keyButtons[code]
			if typ != evKey || value != 1 || !ok {
				continue
			}
			select {
			case k.ch <- Event{Button: button, At: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (k *KeyboardSource) Stop() error {
	if k.cancel != nil {
		k.cancel()
	}
	k.wg.Wait()
	return nil
}

func (k *KeyboardSource) Events() <-chan Event { return k.ch }
