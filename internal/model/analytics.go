package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// Analytics holds one user's aggregates for one day. The date field is the
// day truncated to midnight UTC, unique together with the user.
type Analytics struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID        primitive.ObjectID `bson:"user" json:"-"`
	Date          primitive.DateTime `bson:"date" json:"date"`
	Metrics       AnalyticsMetrics   `bson:"metrics" json:"metrics"`
	ModelUsage    []ModelUsage       `bson:"model_usage" json:"model_usage"`
	FeatureUsage  []FeatureUsage     `bson:"feature_usage" json:"feature_usage"`
	QuestionStats QuestionStats      `bson:"question_stats" json:"question_stats"`
}

type AnalyticsMetrics struct {
	TotalRequests int `bson:"total_requests" json:"total_requests"`
	CreditsUsed   int `bson:"credits_used" json:"credits_used"`
	Tokens        int `bson:"tokens" json:"tokens"`
}

type ModelUsage struct {
	Model string `bson:"model" json:"model"`
	Count int    `bson:"count" json:"count"`
}

type FeatureUsage struct {
	Feature string `bson:"feature" json:"feature"`
	Count   int    `bson:"count" json:"count"`
}

type QuestionStats struct {
	Asked  int `bson:"asked" json:"asked"`
	Solved int `bson:"solved" json:"solved"`
}
