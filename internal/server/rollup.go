package server

import (
	"cheggienexus/internal/model"
	"context"
	"time"
)

// RollupInInterval folds question status counts into the analytics rows on a
// ticker. Usage metrics are written inline on each answer; question stats are
// cheaper to recount periodically than to keep consistent on every mutation.
func (s Server) RollupInInterval(ctx context.Context, ticker *time.Ticker) {
	for range ticker.C {
		s.rollupQuestionStats(ctx)
	}
}

func (s Server) rollupQuestionStats(ctx context.Context) {
	s.Logger.Info("rollupQuestionStats: Starting question stats rollup")

	// Only users whose questions changed in the last two days need their
	// current row refreshed.
	since := time.Now().AddDate(0, 0, -2)
	userIDs, err := s.DB.QuestionUserIDsDistinct(ctx, since)
	if err != nil {
		s.Logger.Errorf("rollupQuestionStats: Error getting user IDs with recent Questions, err: %v", err)
		return
	}
	s.Logger.Infof("rollupQuestionStats: Rolling up question stats for %d user(s)", len(userIDs))

	for _, userID := range userIDs {
		asked, err := s.DB.QuestionCountByStatus(ctx, userID, "")
		if err != nil {
			s.Logger.Errorf("rollupQuestionStats: Error counting Questions for UserID: %s, err: %v", userID.Hex(), err)
			continue
		}
		solved, err := s.DB.QuestionCountByStatus(ctx, userID, model.QuestionStatusSolved)
		if err != nil {
			s.Logger.Errorf("rollupQuestionStats: Error counting solved Questions for UserID: %s, err: %v", userID.Hex(), err)
			continue
		}

		stats := model.QuestionStats{Asked: asked, Solved: solved}
		if err = s.DB.AnalyticsQuestionStatsSet(ctx, userID, time.Now(), stats); err != nil {
			s.Logger.Errorf("rollupQuestionStats: Error setting question stats for UserID: %s, err: %v", userID.Hex(), err)
		}
	}
	s.Logger.Info("rollupQuestionStats: Finished question stats rollup")
}
