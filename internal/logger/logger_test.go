package logger

import (
	"testing"

	"history-quiz/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitializeIsNop(t *testing.T) {
	prev := log
	log = nil
	t.Cleanup(func() { log = prev })

	require.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestInitialize_Levels(t *testing.T) {
	prev := log
	t.Cleanup(func() { log = prev })

	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			require.NoError(t, Initialize(config.LoggerConfig{Env: "production", Level: tt.level}))
			assert.True(t, Get().Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				assert.False(t, Get().Core().Enabled(tt.want-1))
			}
		})
	}
}
