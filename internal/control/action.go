package control

import (
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	TimedDisable Kind = iota
	IndefiniteSuspend
	Enable
	ShowStats
)

func (k Kind) String() string {
	switch k {
	case TimedDisable:
		return "disable"
	case IndefiniteSuspend:
		return "suspend"
	case Enable:
		return "enable"
	case ShowStats:
		return "stats"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Action is what a button is bound to. Duration is only meaningful for
// TimedDisable and is always a whole number of seconds.
type Action struct {
	Kind     Kind
	Duration time.Duration
}

func (a Action) Seconds() int {
	return int(a.Duration / time.Second)
}

func (a Action) String() string {
	if a.Kind == TimedDisable {
		return fmt.Sprintf("disable:%ds", a.Seconds())
	}
	return a.Kind.String()
}

// ParseAction reads a binding string: "disable:<duration>", "suspend",
// "enable" or "stats". The duration uses time.ParseDuration syntax and must
// be a whole number of seconds, at least one.
func ParseAction(s string) (Action, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	name, arg, hasArg := strings.Cut(s, ":")

	switch name {
	case "disable":
		if !hasArg {
			return Action{}, fmt.Errorf("action %q: disable needs a duration, e.g. disable:30s", s)
		}
		d, err := time.ParseDuration(arg)
		if err != nil {
			return Action{}, fmt.Errorf("action %q: %w", s, err)
		}
		if d < time.Second || d%time.Second != 0 {
			return Action{}, fmt.Errorf("action %q: duration must be a whole number of seconds >= 1s", s)
		}
		return Action{Kind: TimedDisable, Duration: d}, nil
	case "suspend", "enable", "stats":
		if hasArg {
			return Action{}, fmt.Errorf("action %q: %s takes no argument", s, name)
		}
		kind := map[string]Kind{"suspend": IndefiniteSuspend, "enable": Enable, "stats": ShowStats}[name]
		return Action{Kind: kind}, nil
	default:
		return Action{}, fmt.Errorf("unknown action %q", s)
	}
}
