package server

import (
	"cheggienexus/internal/model"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestQuestionListFilter(t *testing.T) {
	userID := primitive.NewObjectID()

	filter := questionListFilter(userID, "", "", "")
	assert.Equal(t, bson.M{"user": userID}, filter)

	filter = questionListFilter(userID, "solved", "math", "")
	assert.Equal(t, bson.M{"user": userID, "status": "solved", "subject": "math"}, filter)

	filter = questionListFilter(userID, "", "", "derivative")
	assert.Equal(t, bson.M{
		"user":  userID,
		"title": bson.M{"$regex": "derivative", "$options": "i"},
	}, filter)
}

// The balance gate rejects before any question is loaded, any provider is
// called or any credit is debited. The zero-value DB would panic if it were
// touched, so reaching the 400 proves nothing was mutated.
func TestQuestionAnswerInsufficientCredits(t *testing.T) {
	s := Server{Logger: testLogger{}}
	u := model.User{ID: primitive.NewObjectID(), Credits: 0}
	r := authedRequest(http.MethodPost,
		"/api/questions/"+primitive.NewObjectID().Hex()+"/answer", `{"model":"gpt-4o-mini"}`, u)
	w := httptest.NewRecorder()
	s.questionAnswer()(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Insufficient credits"}`, w.Body.String())
}

func TestQuestionAnswerNegativeCredits(t *testing.T) {
	s := Server{Logger: testLogger{}}
	u := model.User{ID: primitive.NewObjectID(), Credits: -3}
	r := authedRequest(http.MethodPost,
		"/api/questions/"+primitive.NewObjectID().Hex()+"/answer", `{}`, u)
	w := httptest.NewRecorder()
	s.questionAnswer()(w, r)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Insufficient credits"}`, w.Body.String())
}

func TestQuestionListFilterEscapesRegex(t *testing.T) {
	userID := primitive.NewObjectID()
	filter := questionListFilter(userID, "", "", "what is (a+b)^2?")
	title, ok := filter["title"].(bson.M)
	assert.True(t, ok)
	assert.Equal(t, `what is \(a\+b\)\^2\?`, title["$regex"])
}
