package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDay(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"midday UTC",
			time.Date(2024, 3, 15, 13, 45, 12, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"already midnight",
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			"offset zone crossing the date line",
			time.Date(2024, 3, 15, 3, 0, 0, 0, loc),
			time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Day(tt.in)
			assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
		})
	}
}
