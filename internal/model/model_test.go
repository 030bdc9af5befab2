package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidChatStatus(t *testing.T) {
	assert.True(t, ValidChatStatus(ChatStatusActive))
	assert.True(t, ValidChatStatus(ChatStatusArchived))
	assert.True(t, ValidChatStatus(ChatStatusDeleted))
	assert.False(t, ValidChatStatus("paused"))
	assert.False(t, ValidChatStatus(""))
}

func TestValidQuestionStatus(t *testing.T) {
	assert.True(t, ValidQuestionStatus(QuestionStatusPending))
	assert.True(t, ValidQuestionStatus(QuestionStatusSolved))
	assert.True(t, ValidQuestionStatus(QuestionStatusFlagged))
	assert.False(t, ValidQuestionStatus("answered"))
}

func TestValidCreditType(t *testing.T) {
	assert.True(t, ValidCreditType(CreditTypePurchase))
	assert.True(t, ValidCreditType(CreditTypeUsage))
	assert.True(t, ValidCreditType(CreditTypeRefund))
	assert.True(t, ValidCreditType(CreditTypeBonus))
	assert.False(t, ValidCreditType("gift"))
}

func TestUserIsAdmin(t *testing.T) {
	assert.True(t, User{Role: RoleAdmin}.IsAdmin())
	assert.False(t, User{Role: RoleUser}.IsAdmin())
	assert.False(t, User{}.IsAdmin())
}

func TestNewChatMessage(t *testing.T) {
	before := time.Now()
	msg := NewChatMessage("assistant", "The answer is 4.", "gpt-4o-mini")
	assert.Equal(t, "assistant", msg.Role)
	assert.Equal(t, "The answer is 4.", msg.Content)
	assert.Equal(t, "gpt-4o-mini", msg.Model)
	assert.WithinDuration(t, before, msg.Timestamp.Time(), time.Minute)
}
