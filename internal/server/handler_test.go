package server

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{}

func (testLogger) Debug(v ...any)                 {}
func (testLogger) Info(v ...any)                  {}
func (testLogger) Error(v ...any)                 {}
func (testLogger) Debugf(format string, v ...any) {}
func (testLogger) Infof(format string, v ...any)  {}
func (testLogger) Errorf(format string, v ...any) {}

func TestWriteJsonResponse(t *testing.T) {
	s := Server{Logger: testLogger{}}
	w := httptest.NewRecorder()
	s.writeJsonResponse(w, map[string]int{"credits": 10}, 201)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"credits": 10}`, w.Body.String())
}

func TestWriteErrorResponse(t *testing.T) {
	s := Server{Logger: testLogger{}}
	w := httptest.NewRecorder()
	s.writeErrorResponse(w, "Insufficient credits", 400)

	require.Equal(t, 400, w.Code)
	assert.JSONEq(t, `{"error": "Insufficient credits"}`, w.Body.String())
}
