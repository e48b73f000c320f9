package logging

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptured(level Level) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := New()
	l.SetLevel(level)
	l.SetOutput(log.New(buf, "", 0))
	return l, buf
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"WARNING", LevelWarn, false},
		{"error", LevelError, false},
		{"", LevelInfo, false},
		{"loud", LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseLevel(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseLevel(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseLevel(%q)", tt.in)
	}
}

func TestLevelFiltering(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelWarn)

	l.Debug("quiet")
	l.Info("also quiet")
	assert.Empty(t, buf.String())

	l.Warn("loud")
	assert.Contains(t, buf.String(), "WARN: loud")
}

func TestKeyValueFormatting(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)

	l.Info("frame acquired", "frame", 12, "state", "Running")
	out := buf.String()
	assert.Contains(t, out, "INFO: frame acquired")
	assert.Contains(t, out, "frame=12")
	assert.Contains(t, out, "state=Running")
}

func TestWithFields(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)
	child := l.With("run", "abc123")

	child.Info("started")
	assert.Contains(t, buf.String(), "run=abc123")

	buf.Reset()
	l.Info("no context")
	assert.NotContains(t, buf.String(), "run=abc123")
}

func TestQuotedValues(t *testing.T) {
	t.Parallel()

	l, buf := newCaptured(LevelDebug)
	l.Warn("late frame", "reason", "sequence already finished")
	assert.Contains(t, buf.String(), `reason="sequence already finished"`)
}
