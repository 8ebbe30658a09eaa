package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	l, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = NewLogger("warn", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}

func TestWithOperation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{zap.New(core)}

	l.WithOperation("op-1").Info("hello")
	l.WithOperation("").Info("bare")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "op-1", entries[0].ContextMap()["op_id"])
	assert.NotContains(t, entries[1].ContextMap(), "op_id")
}

func TestBadgerLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bl := NewBadgerLogger(zap.New(core))

	bl.Errorf("disk %s\n", "full")
	bl.Warningf("slow")
	bl.Infof("compaction")

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "disk full", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[2].Level)
	assert.Equal(t, "badger", entries[0].LoggerName)
}
