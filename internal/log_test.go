package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelInfo)

	l.Info("perms=%d", 10)
	l.Debug("hidden")
	l.Warn("careful")

	out := buf.String()
	assert.Contains(t, out, "[INFO] perms=10")
	assert.Contains(t, out, "[WARN] careful")
	assert.NotContains(t, out, "hidden")

	buf.Reset()
	l.SetLevel(LogLevelTrace)
	l.Trace("deep")
	assert.Contains(t, buf.String(), "[TRACE] deep")
	assert.Equal(t, LogLevelTrace, l.GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
		ok   bool
	}{
		{"ERROR", LogLevelError, true},
		{"warn", LogLevelWarn, true},
		{" Info ", LogLevelInfo, true},
		{"debug", LogLevelDebug, true},
		{"TRACE", LogLevelTrace, true},
		{"verbose", LogLevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLogLevel(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestNewDiscardLogger(t *testing.T) {
	l := NewDiscardLogger()
	l.Error("nothing written")
	assert.Equal(t, LogLevelError, l.GetLevel())
}
