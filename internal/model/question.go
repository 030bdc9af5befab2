package model

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	QuestionStatusPending = "pending"
	QuestionStatusSolved  = "solved"
	QuestionStatusFlagged = "flagged"
)

type Question struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID `bson:"user" json:"-"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Subject   string             `bson:"subject" json:"subject"`
	Answers   []Answer           `bson:"answers" json:"answers"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt primitive.DateTime `bson:"updated_at" json:"-"`
}

type Answer struct {
	Content   string             `bson:"content" json:"content"`
	Model     string             `bson:"model" json:"model"`
	Metadata  AnswerMetadata     `bson:"metadata" json:"metadata"`
	CreatedAt primitive.DateTime `bson:"created_at" json:"created_at"`
}

type AnswerMetadata struct {
	Confidence  float64 `bson:"confidence" json:"confidence"`
	Tokens      int     `bson:"tokens" json:"tokens"`
	CreditsUsed int     `bson:"credits_used" json:"credits_used"`
}

func ValidQuestionStatus(s string) bool {
	return s == QuestionStatusPending || s == QuestionStatusSolved || s == QuestionStatusFlagged
}
