package strand_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandrt/strand"
)

type capturingLogger struct {
	entries []strand.Entry
}

func (c *capturingLogger) Log(e strand.Entry) { c.entries = append(c.entries, e) }
func (c *capturingLogger) Enabled(strand.Level) bool { return true }

func TestLogifaceLoggerTranslatesFields(t *testing.T) {
	target := &capturingLogger{}
	l := strand.NewLogifaceLogger(target, strand.LevelDebug)

	require.True(t, l.Enabled(strand.LevelError))
	l.Log(strand.Entry{
		Level:    strand.LevelWarn,
		Category: "reactor",
		Message:  "registration failed",
		FiberID:  42,
		FD:       7,
		Err:      errors.New("boom"),
	})

	require.Len(t, target.entries, 1)
	got := target.entries[0]
	assert.Equal(t, strand.LevelWarn, got.Level)
	assert.Equal(t, int64(42), got.FiberID)
	assert.Equal(t, 7, got.FD)
	assert.Equal(t, "logiface.reactor", got.Category)
	assert.EqualError(t, got.Err, "boom")
}

func TestLogifaceLoggerRespectsLevelFloor(t *testing.T) {
	target := &capturingLogger{}
	l := strand.NewLogifaceLogger(target, strand.LevelError)

	assert.False(t, l.Enabled(strand.LevelDebug))
	l.Log(strand.Entry{Level: strand.LevelDebug, Message: "should be dropped"})
	assert.Empty(t, target.entries)
}
