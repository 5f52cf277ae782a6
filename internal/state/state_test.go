package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_Lifecycle(t *testing.T) {
	store := NewStore()
	assert.Equal(t, BOOTING, store.Snapshot().Phase)

	now := time.Unix(1700000000, 0)
	store.SetPhase(IDLE, now)
	store.Pressed(1)
	store.Dispatch("A", "disable:3s", 1, now)
	store.Pressed(2)

	snap := store.Snapshot()
	assert.Equal(t, DISPATCHING, snap.Phase)
	assert.Equal(t, "A", snap.Button)
	assert.Equal(t, "disable:3s", snap.Action)
	assert.Equal(t, uint64(1), snap.ActionEpoch)
	assert.Equal(t, uint64(2), snap.Epoch)
	assert.Equal(t, uint64(2), snap.Presses)
	assert.Equal(t, now, snap.Since)
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", IDLE.String())
	assert.Equal(t, "dispatching", DISPATCHING.String())
	assert.Equal(t, "unknown", Phase(99).String())
}
