package httputil

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardClient_Wraps(t *testing.T) {
	custom := &http.Client{}
	assert.Same(t, custom, NewStandardClient(custom).Client)
	assert.Same(t, http.DefaultClient, NewStandardClient(nil).Client)
}

func TestStandardClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		w.Write(body)
	}))
	defer srv.Close()

	req, err := NewJSONRequest(context.Background(), http.MethodPost, srv.URL, map[string]int{"n": 1})
	require.NoError(t, err)

	var out map[string]int
	require.NoError(t, DoJSON(NewStandardClient(srv.Client()), req, &out))
	assert.Equal(t, map[string]int{"n": 1}, out)
}

func TestDoJSON_StatusError(t *testing.T) {
	mock := NewMockHTTPClient().AddResponse(http.StatusUnauthorized, `{"error":"bad key"}`)
	req, err := NewJSONRequest(context.Background(), http.MethodPost, "http://example.com", struct{}{})
	require.NoError(t, err)

	var out struct{}
	err = DoJSON(mock, req, &out)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Error(), "bad key")
}

func TestDoJSON_DecodeError(t *testing.T) {
	mock := NewMockHTTPClient().AddResponse(http.StatusOK, `not json`)
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	var out map[string]any
	assert.ErrorContains(t, DoJSON(mock, req, &out), "failed to decode response")
}

func TestCheckResponse_TruncatesBody(t *testing.T) {
	mock := NewMockHTTPClient().AddResponse(http.StatusBadGateway, strings.Repeat("x", 2000))
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	resp, err := mock.Do(req)
	require.NoError(t, err)

	var se *StatusError
	require.ErrorAs(t, CheckResponse(resp), &se)
	assert.Len(t, se.Body, maxErrorBody)
}

func TestMockHTTPClient_QueuedResponses(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.AddResponse(http.StatusOK, "first")
	mock.AddErrorResponse(errors.New("boom"))

	req, _ := http.NewRequest(http.MethodPost, "http://example.com/a", strings.NewReader("payload"))
	resp, err := mock.Do(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "first", string(body))
	assert.Equal(t, "payload", mock.GetBody(0))

	// The recorded request body can still be read.
	recorded, _ := io.ReadAll(mock.GetRequest(0).Body)
	assert.Equal(t, "payload", string(recorded))

	req2, _ := http.NewRequest(http.MethodGet, "http://example.com/b", nil)
	_, err = mock.Do(req2)
	assert.EqualError(t, err, "boom")

	resp, err = mock.Do(req2)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "default response once the queue is drained")

	assert.Equal(t, 3, mock.RequestCount())
	assert.Nil(t, mock.GetRequest(5))
	assert.Equal(t, "", mock.GetBody(-1))
}

func TestMockHTTPClient_DoFuncAndDefaultError(t *testing.T) {
	mock := NewMockHTTPClient()
	mock.DefaultError = errors.New("offline")
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := mock.Do(req)
	assert.EqualError(t, err, "offline")

	mock.DoFunc = func(r *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusTeapot, Body: http.NoBody}, nil
	}
	resp, err := mock.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTeapot, resp.StatusCode)
}

func TestRateLimitedClient(t *testing.T) {
	mock := NewMockHTTPClient()
	client := NewRateLimitedClient(mock, 1, 1)

	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	_, err := client.Do(req)
	require.NoError(t, err)

	// The bucket is empty now; a short deadline cannot be met.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = client.Do(req.WithContext(ctx))
	assert.ErrorContains(t, err, "rate limit wait")
	assert.Equal(t, 1, mock.RequestCount())
}
