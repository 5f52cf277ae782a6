package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	for _, env := range []string{"dev", "prod"} {
		for _, level := range []string{"debug", "info", "warn", "error", "INFO"} {
			l, err := New(env, level)
			require.NoError(t, err, "env=%s level=%s", env, level)
			assert.NotNil(t, l)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("prod", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestZapLogger_NamesComponent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := FromZap(zap.New(core))

	l.Debugf("stats", "fetching %s", "summary")
	l.Infof("control", "Pi-hole disabled for %d", 3)
	l.Warnf("stats", "partial snapshot")
	l.Errorf("pihole", "command failed: %v", "exit 1")

	entries := logs.All()
	require.Len(t, entries, 4)

	assert.Equal(t, "stats", entries[0].LoggerName)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "fetching summary", entries[0].Message)

	assert.Equal(t, "control", entries[1].LoggerName)
	assert.Equal(t, "Pi-hole disabled for 3", entries[1].Message)

	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "pihole", entries[3].LoggerName)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestNoopLogger(t *testing.T) {
	var l Logger = NoopLogger{}
	l.Debugf("x", "y")
	l.Infof("x", "y")
	l.Warnf("x", "y")
	l.Errorf("x", "y")
}
