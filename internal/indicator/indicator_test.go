package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rook-computer/pipanel/internal/logging"
)

func TestColor_String(t *testing.T) {
	assert.Equal(t, "#ff9600", Orange.String())
	assert.Equal(t, "#000000", Off.String())
	assert.Equal(t, "#ffff00", Yellow.String())
}

func TestLogIndicator_TracksLast(t *testing.T) {
	ind := &LogIndicator{Logger: logging.NoopLogger{}}
	require.NoError(t, ind.SetColor(Red))
	assert.Equal(t, Red, ind.Last())
	require.NoError(t, ind.SetColor(Off))
	assert.Equal(t, Off, ind.Last())
}
