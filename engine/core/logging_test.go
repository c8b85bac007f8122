package core

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, "pool")
	l.Info("rented", "label", "positions")

	out := buf.String()
	assert.Contains(t, out, "pool")
	assert.Contains(t, out, "rented")
	assert.Contains(t, out, "label=positions")
}

func TestSetLevel(t *testing.T) {
	prev := Logger().GetLevel()
	t.Cleanup(func() { Logger().SetLevel(prev) })

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())

	require.Error(t, SetLevel("loud"))
	assert.Equal(t, log.DebugLevel, Logger().GetLevel())
}
