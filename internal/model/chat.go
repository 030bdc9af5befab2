package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

const (
	ChatStatusActive   = "active"
	ChatStatusArchived = "archived"
	ChatStatusDeleted  = "deleted"
)

type Chat struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    primitive.ObjectID `bson:"user" json:"-"`
	Title     string             `bson:"title" json:"title"`
	Messages  []ChatMessage      `bson:"messages" json:"messages"`
	Metadata  ChatMetadata       `bson:"metadata" json:"metadata"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt primitive.DateTime `bson:"created_at" json:"-"`
	UpdatedAt primitive.DateTime `bson:"updated_at" json:"-"`
}

type ChatMessage struct {
	Role      string             `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	Model     string             `bson:"model" json:"model,omitempty"`
	Timestamp primitive.DateTime `bson:"ts" json:"ts"`
}

type ChatMetadata struct {
	TotalTokens  int                `bson:"total_tokens" json:"total_tokens"`
	CreditsUsed  int                `bson:"credits_used" json:"credits_used"`
	LastActivity primitive.DateTime `bson:"last_activity" json:"last_activity"`
}

func ValidChatStatus(s string) bool {
	return s == ChatStatusActive || s == ChatStatusArchived || s == ChatStatusDeleted
}

func NewChatMessage(role, content, model string) ChatMessage {
	return ChatMessage{
		Role:      role,
		Content:   content,
		Model:     model,
		Timestamp: primitive.NewDateTimeFromTime(time.Now()),
	}
}
