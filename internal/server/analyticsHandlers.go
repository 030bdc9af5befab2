package server

import (
	"cheggienexus/internal/model"
	"context"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"net/http"
	"sort"
	"time"
)

// recordAnalytics upserts the caller's row for today. Failures are logged
// and swallowed, analytics must never fail the request that produced them.
func (s Server) recordAnalytics(
	ctx context.Context, userID primitive.ObjectID, aiModel string, feature string, tokens int, creditsUsed int,
) {
	if err := s.DB.AnalyticsRecordUsage(ctx, userID, time.Now(), aiModel, feature, tokens, creditsUsed); err != nil {
		s.Logger.Errorf("recordAnalytics: Error recording usage for UserID: %s, err: %v", userID.Hex(), err)
	}
}

type analyticsSummary struct {
	TotalRequests int                `json:"total_requests"`
	CreditsUsed   int                `json:"credits_used"`
	Tokens        int                `json:"tokens"`
	Days          int                `json:"days"`
	ModelUsage    []model.ModelUsage `json:"model_usage"`
}

// summarize folds daily rows into one aggregate, model counters merged and
// sorted by count descending.
func summarize(rows []model.Analytics) analyticsSummary {
	sum := analyticsSummary{Days: len(rows)}
	modelCounts := map[string]int{}
	for _, row := range rows {
		sum.TotalRequests += row.Metrics.TotalRequests
		sum.CreditsUsed += row.Metrics.CreditsUsed
		sum.Tokens += row.Metrics.Tokens
		for _, mu := range row.ModelUsage {
			modelCounts[mu.Model] += mu.Count
		}
	}
	sum.ModelUsage = []model.ModelUsage{}
	for m, n := range modelCounts {
		sum.ModelUsage = append(sum.ModelUsage, model.ModelUsage{Model: m, Count: n})
	}
	sort.Slice(sum.ModelUsage, func(i, j int) bool {
		if sum.ModelUsage[i].Count != sum.ModelUsage[j].Count {
			return sum.ModelUsage[i].Count > sum.ModelUsage[j].Count
		}
		return sum.ModelUsage[i].Model < sum.ModelUsage[j].Model
	})
	return sum
}

func (s Server) analyticsSummary() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("analyticsSummary: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		rows, err := s.DB.AnalyticsFindAllByUser(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("analyticsSummary: Error finding Analytics, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, summarize(rows), http.StatusOK)
	}
}

func (s Server) analyticsDaily() http.HandlerFunc {
	type day struct {
		Date          time.Time              `json:"date"`
		Metrics       model.AnalyticsMetrics `json:"metrics"`
		ModelUsage    []model.ModelUsage     `json:"model_usage"`
		FeatureUsage  []model.FeatureUsage   `json:"feature_usage"`
		QuestionStats model.QuestionStats    `json:"question_stats"`
	}
	type response []day
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("analyticsDaily: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		rows, err := s.DB.AnalyticsFindDaily(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("analyticsDaily: Error finding Analytics, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		resp := response{}
		for _, row := range rows {
			resp = append(resp, day{
				Date:          row.Date.Time().UTC(),
				Metrics:       row.Metrics,
				ModelUsage:    row.ModelUsage,
				FeatureUsage:  row.FeatureUsage,
				QuestionStats: row.QuestionStats,
			})
		}
		s.writeJsonResponse(w, resp, http.StatusOK)
	}
}

func (s Server) analyticsModels() http.HandlerFunc {
	type response struct {
		ModelUsage []model.ModelUsage `json:"model_usage"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		uc, err := getUserContext(r.Context())
		if err != nil {
			s.Logger.Errorf("analyticsModels: Error getting userContext, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		rows, err := s.DB.AnalyticsFindAllByUser(r.Context(), uc.user.ID)
		if err != nil {
			s.Logger.Errorf("analyticsModels: Error finding Analytics, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{ModelUsage: summarize(rows).ModelUsage}, http.StatusOK)
	}
}
