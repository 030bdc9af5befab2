package database

import (
	"cheggienexus/internal/model"
	"context"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"time"
)

// Day truncates t to midnight UTC, the granularity of analytics rows.
func Day(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// AnalyticsRecordUsage upserts the user's row for the day and bumps the
// request, credit, token and per-model counters in one write.
func (db Database) AnalyticsRecordUsage(
	ctx context.Context, userID primitive.ObjectID, day time.Time, aiModel string, feature string, tokens int, creditsUsed int,
) error {
	date := primitive.NewDateTimeFromTime(Day(day))
	opts := options.Update().SetUpsert(true)

	_, err := db.Collection(CollectionAnalytics).UpdateOne(
		ctx,
		bson.M{"user": userID, "date": date},
		bson.M{"$inc": bson.M{
			"metrics.total_requests": 1,
			"metrics.credits_used":   creditsUsed,
			"metrics.tokens":         tokens,
		}},
		opts,
	)
	if err != nil {
		return errors.Wrapf(err, "error upserting Analytics for UserID: %s, date: %s", userID.Hex(), Day(day))
	}

	// Array counters need their own writes: bump the entry if present,
	// otherwise push a fresh one. Not atomic with the upsert above.
	if aiModel != "" {
		if err = db.analyticsBumpArrayCounter(ctx, userID, date, "model_usage", "model", aiModel); err != nil {
			return err
		}
	}
	if feature != "" {
		if err = db.analyticsBumpArrayCounter(ctx, userID, date, "feature_usage", "feature", feature); err != nil {
			return err
		}
	}
	return nil
}

func (db Database) analyticsBumpArrayCounter(
	ctx context.Context, userID primitive.ObjectID, date primitive.DateTime, field string, key string, value string,
) error {
	res, err := db.Collection(CollectionAnalytics).UpdateOne(
		ctx,
		bson.M{"user": userID, "date": date, field + "." + key: value},
		bson.M{"$inc": bson.M{field + ".$.count": 1}},
	)
	if err != nil {
		return errors.Wrapf(err, "error bumping %s counter %s for UserID: %s", field, value, userID.Hex())
	}
	if res.MatchedCount == 0 {
		_, err = db.Collection(CollectionAnalytics).UpdateOne(
			ctx,
			bson.M{"user": userID, "date": date},
			bson.M{"$push": bson.M{field: bson.M{key: value, "count": 1}}},
		)
		if err != nil {
			return errors.Wrapf(err, "error pushing %s counter %s for UserID: %s", field, value, userID.Hex())
		}
	}
	return nil
}

func (db Database) AnalyticsQuestionStatsSet(
	ctx context.Context, userID primitive.ObjectID, day time.Time, stats model.QuestionStats,
) error {
	date := primitive.NewDateTimeFromTime(Day(day))
	opts := options.Update().SetUpsert(true)
	_, err := db.Collection(CollectionAnalytics).UpdateOne(
		ctx,
		bson.M{"user": userID, "date": date},
		bson.M{"$set": bson.M{"question_stats": stats}},
		opts,
	)
	return errors.Wrapf(err, "error setting question stats for UserID: %s, date: %s", userID.Hex(), Day(day))
}

// AnalyticsFindDaily returns the newest rows for a user, capped at 30.
func (db Database) AnalyticsFindDaily(ctx context.Context, userID primitive.ObjectID) ([]model.Analytics, error) {
	var as []model.Analytics
	opts := options.Find().SetSort(bson.M{"date": -1}).SetLimit(30)
	cur, err := db.Collection(CollectionAnalytics).Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find Analytics for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &as); err != nil {
		return nil, errors.Wrapf(err, "error getting Analytics from cursor for UserID: %s", userID.Hex())
	}
	return as, nil
}

func (db Database) AnalyticsFindAllByUser(ctx context.Context, userID primitive.ObjectID) ([]model.Analytics, error) {
	var as []model.Analytics
	opts := options.Find().SetSort(bson.M{"date": -1})
	cur, err := db.Collection(CollectionAnalytics).Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "error getting cursor to find all Analytics for UserID: %s", userID.Hex())
	}
	if err = cur.All(ctx, &as); err != nil {
		return nil, errors.Wrapf(err, "error getting all Analytics from cursor for UserID: %s", userID.Hex())
	}
	return as, nil
}
