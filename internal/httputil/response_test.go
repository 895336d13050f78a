package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["error"]
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"frames": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"frames":3}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		msg    string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "no file") }, http.StatusBadRequest, "no file"},
		{"not found", func(w http.ResponseWriter) { NotFound(w, "no session") }, http.StatusNotFound, "no session"},
		{"internal", func(w http.ResponseWriter) { InternalServerError(w, "analysis failed", errors.New("detail")) }, http.StatusInternalServerError, "analysis failed"},
		{"custom", func(w http.ResponseWriter) { WriteJSONError(w, http.StatusConflict, "busy") }, http.StatusConflict, "busy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.msg, decodeError(t, rec))
		})
	}
}

func TestDecodeJSONBody(t *testing.T) {
	var v struct {
		Question string `json:"question"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"why?"}`))
	require.NoError(t, DecodeJSONBody(httptest.NewRecorder(), req, 1024, &v))
	assert.Equal(t, "why?", v.Question)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.Error(t, DecodeJSONBody(httptest.NewRecorder(), req, 1024, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"question":"`+strings.Repeat("a", 100)+`"}`))
	assert.Error(t, DecodeJSONBody(httptest.NewRecorder(), req, 16, &v))
}
