package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"OFF", LevelOff},
		{"ERROR", LevelError},
		{"INFO", LevelInfo},
		{"DEBUG", LevelDebug},
		{"debug", LevelDebug},
		{"Info", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			level, err := ParseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	_, err := ParseLevel("VERBOSE")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VERBOSE")
}
