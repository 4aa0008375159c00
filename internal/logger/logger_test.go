package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger, err := NewLogger(tt.level)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(tt.expected))
			assert.False(t, logger.Core().Enabled(tt.expected-1))
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	logger, err := NewLogger("loud")
	assert.Error(t, err)
	assert.Nil(t, logger)
}
