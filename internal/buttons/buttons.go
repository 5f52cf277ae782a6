package buttons

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Button int

const (
	ButtonA Button = iota
	ButtonB
	ButtonC
	ButtonD
	ButtonE
)

// All lists the panel buttons in hardware order.
var All = []Button{ButtonA, ButtonB, ButtonC, ButtonD, ButtonE}

func (b Button) String() string {
	if b < ButtonA || b > ButtonE {
		return fmt.Sprintf("Button(%d)", int(b))
	}
	return string(rune('A' + int(b)))
}

// ParseButton accepts "a".."e" in either case.
func ParseButton(s string) (Button, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if len(s) != 1 || s[0] < 'A' || s[0] > 'E' {
		return 0, fmt.Errorf("unknown button %q", s)
	}
	return Button(s[0] - 'A'), nil
}

// Event is a single press. Sources only report presses, never releases.
type Event struct {
	Button Button
	At     time.Time
}

// Source delivers button presses. Implementations may poll on their own
// goroutines, but must only hand events over through the Events channel.
type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopSource struct{ ch chan Event }

func NewNoopSource() *NoopSource { return &NoopSource{ch: make(chan Event)} }

func (n *NoopSource) Start(ctx context.Context) error { return nil }
func (n *NoopSource) Stop() error                     { return nil }
func (n *NoopSource) Events() <-chan Event            { return n.ch }

// Injector is a Source fed programmatically (simulator HTTP endpoint, tests).
type Injector struct {
	ch chan Event
}

func NewInjector(buffer int) *Injector {
	return &Injector{ch: make(chan Event, buffer)}
}

func (in *Injector) Start(ctx context.Context) error { return nil }
func (in *Injector) Stop() error                     { return nil }
func (in *Injector) Events() <-chan Event            { return in.ch }

// Press queues a press. It returns false when the buffer is full.
func (in *Injector) Press(b Button) bool {
	select {
	case in.ch <- Event{Button: b, At: time.Now()}:
		return true
	default:
		return false
	}
}
