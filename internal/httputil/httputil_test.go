package httputil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponses(t *testing.T) {
	testCases := []struct {
		name     string
		write    func(w http.ResponseWriter)
		status   int
		expected string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "Invalid match ID", nil) }, http.StatusBadRequest, "Invalid match ID"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "Match not found", errors.New("no rows")) }, http.StatusNotFound, "Match not found"},
		{"conflict", func(w http.ResponseWriter) { Conflict(w, "Already completed", nil) }, http.StatusConflict, "Already completed"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "boom", errors.New("db down")) }, http.StatusInternalServerError, "Internal Server Error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.expected, strings.TrimSpace(rec.Body.String()))
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, map[string]int{"round": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"round": 2}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var body struct {
		WinnerID string `json:"winner_id"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"winner_id": "abc"}`))
	require.NoError(t, DecodeJSON(req, &body))
	assert.Equal(t, "abc", body.WinnerID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"winner": "abc"}`))
	assert.Error(t, DecodeJSON(req, &body))
}
