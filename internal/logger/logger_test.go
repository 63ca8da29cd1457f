package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := GetLevel()
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetLevel(prev)
		SetOutput(nopWriter{})
	})
	return &buf
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warning")
	Error("shown error")

	out := buf.String()
	assert.NotContains(t, out, "hidden debug")
	assert.NotContains(t, out, "hidden info")
	assert.Contains(t, out, "shown warning")
	assert.Contains(t, out, "shown error")
}

func TestSilentLevel(t *testing.T) {
	buf := captureOutput(t, LevelSilent)

	Error("nothing")
	assert.Empty(t, buf.String())
}

func TestComponentFields(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	DB().WithField("table", "todos").Debug("query")
	Store().WithFields(map[string]interface{}{"user_id": 7}).Info("created")

	out := buf.String()
	assert.Contains(t, out, "component=db")
	assert.Contains(t, out, "table=todos")
	assert.Contains(t, out, "component=store")
	assert.Contains(t, out, "user_id=7")
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"VERBOSE": LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"off":     LevelSilent,
		"bogus":   LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}
