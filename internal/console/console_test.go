package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func TestLogKindsAndTimestamp(t *testing.T) {
	c := New(WithClock(fixedClock()))
	c.Log("Editor initialized", KindNormal)
	c.Info("Opened tab: %s", "Tab 1")
	c.Success("File '%s' saved successfully", "main.lua")
	c.Error("Error saving folder: %v", "boom")

	got := c.Entries()
	require.Len(t, got, 4)
	assert.Equal(t, KindNormal, got[0].Kind)
	assert.Equal(t, "Opened tab: Tab 1", got[1].Message)
	assert.Equal(t, KindSuccess, got[2].Kind)
	assert.Equal(t, "Error saving folder: boom", got[3].Message)
	assert.Equal(t, "09:30:00", got[0].Timestamp())
	assert.Equal(t, "[09:30:00] Opened tab: Tab 1", got[1].String())
}

func TestRingDropsOldest(t *testing.T) {
	c := New(WithCapacity(3))
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		c.Log(m, KindNormal)
	}
	var msgs []string
	for _, e := range c.Entries() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{"c", "d", "e"}, msgs)
	require.Len(t, c.Tail(2), 2)
	assert.Equal(t, "e", c.Tail(1)[0].Message)

	c.Clear()
	assert.Empty(t, c.Entries())
	c.Log("f", KindInfo)
	assert.Equal(t, "f", c.Entries()[0].Message)
}

func TestMirrorsToLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(WithLogger(zap.New(core)))

	c.Error("bad %d", 1)
	c.Info("ok")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "bad 1", logs.All()[0].Message)
	assert.Equal(t, zap.ErrorLevel, logs.All()[0].Level)
	assert.Equal(t, zap.InfoLevel, logs.All()[1].Level)
}
