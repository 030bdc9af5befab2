package server

import (
	"cheggienexus/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	rows := []model.Analytics{
		{
			Metrics: model.AnalyticsMetrics{TotalRequests: 3, CreditsUsed: 3, Tokens: 900},
			ModelUsage: []model.ModelUsage{
				{Model: "gpt-4o-mini", Count: 2},
				{Model: "claude-3-haiku-20240307", Count: 1},
			},
		},
		{
			Metrics: model.AnalyticsMetrics{TotalRequests: 2, CreditsUsed: 2, Tokens: 400},
			ModelUsage: []model.ModelUsage{
				{Model: "gpt-4o-mini", Count: 1},
				{Model: "gemini-1.5-flash", Count: 1},
			},
		},
	}

	sum := summarize(rows)
	assert.Equal(t, 5, sum.TotalRequests)
	assert.Equal(t, 5, sum.CreditsUsed)
	assert.Equal(t, 1300, sum.Tokens)
	assert.Equal(t, 2, sum.Days)
	assert.Equal(t, []model.ModelUsage{
		{Model: "gpt-4o-mini", Count: 3},
		{Model: "claude-3-haiku-20240307", Count: 1},
		{Model: "gemini-1.5-flash", Count: 1},
	}, sum.ModelUsage)
}

func TestSummarizeEmpty(t *testing.T) {
	sum := summarize(nil)
	assert.Equal(t, 0, sum.TotalRequests)
	assert.Equal(t, 0, sum.Days)
	assert.NotNil(t, sum.ModelUsage)
	assert.Empty(t, sum.ModelUsage)
}
