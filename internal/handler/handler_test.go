package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSONValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		ok     bool
		errMsg string
	}{
		{"valid", `{"name":"Early","phase":2}`, true, ""},
		{"missing name", `{"phase":2}`, false, "name is required"},
		{"phase zero", `{"name":"Prep","phase":0}`, true, ""},
		{"negative phase", `{"name":"x","phase":-1}`, false, "phase failed gte"},
		{"broken json", `{"name":`, false, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))

			var dst categoryRequest
			got := decodeJSON(rec, req, &dst)
			assert.Equal(t, tt.ok, got)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, rec.Body.String(), tt.errMsg)
			}
		})
	}
}

func TestPhaseZeroAccepted(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"item_id":3,"quantity":1,"phase":0}`))
	var add quantityRequest
	assert.True(t, decodeJSON(rec, req, &add), rec.Body.String())
	if assert.NotNil(t, add.Phase) {
		assert.Equal(t, 0, *add.Phase)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, "/", strings.NewReader(`{"phase":0}`))
	var move phaseRequest
	assert.True(t, decodeJSON(rec, req, &move), rec.Body.String())
	if assert.NotNil(t, move.Phase) {
		assert.Equal(t, 0, *move.Phase)
	}
}

func TestDecodeJSONEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)

	var dst createListRequest
	assert.True(t, decodeJSON(rec, req, &dst))
	assert.Nil(t, dst.Items)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, http.StatusNotFound, "list not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"list not found"}`, rec.Body.String())
}
