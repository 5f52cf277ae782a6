package state

import (
	"sync"
	"time"
)

type Phase int

const (
	BOOTING Phase = iota
	IDLE
	DISPATCHING
	STOPPED
)

func (p Phase) String() string {
	switch p {
	case BOOTING:
		return "booting"
	case IDLE:
		return "idle"
	case DISPATCHING:
		return "dispatching"
	case STOPPED:
		return "stopped"
	default:
		return "unknown"
	}
}

// State is a read-only view of the event loop for logs and the simulator.
type State struct {
	Phase  Phase
	Button string
	Action string
	// ActionEpoch is the epoch the running action captured, Epoch the live
	// token. They differ while a superseded action winds down.
	ActionEpoch uint64
	Epoch       uint64
	Presses     uint64
	Since       time.Time
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase, at time.Time) {
	store.mu.Lock()
	store.state.Phase = phase
	store.state.Since = at
	store.mu.Unlock()
}

// Pressed counts a press at the moment it bumps the generation token.
func (store *Store) Pressed(epoch uint64) {
	store.mu.Lock()
	store.state.Presses++
	store.state.Epoch = epoch
	store.mu.Unlock()
}

// Dispatch records the action that now owns the panel.
func (store *Store) Dispatch(button, action string, epoch uint64, at time.Time) {
	store.mu.Lock()
	store.state.Phase = DISPATCHING
	store.state.Button = button
	store.state.Action = action
	store.state.ActionEpoch = epoch
	store.state.Since = at
	store.mu.Unlock()
}
