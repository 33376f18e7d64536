package httputil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseJSON(t *testing.T) {
	// null status ok
	handler := func(w http.ResponseWriter, r *http.Request) {
		ResponseJSON(nil, http.StatusOK, w)
	}
	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()
	handler(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, body, []byte("null"))
	assert.Equal(t, w.Header(), http.Header(http.Header{"Content-Type": []string{"application/json"}}))
	assert.Equal(t, w.Code, 200)

	// interface status 500
	handler = func(w http.ResponseWriter, r *http.Request) {
		ResponseError("Not OK", http.StatusInternalServerError, w)
	}
	w = httptest.NewRecorder()
	handler(w, req)
	resp = w.Result()
	body, _ = io.ReadAll(resp.Body)

	assert.Equal(t, body, []byte(`{"message":"Not OK"}`))
	assert.Equal(t, w.Header(), http.Header(http.Header{"Content-Type": []string{"application/json"}}))
	assert.Equal(t, w.Code, 500)
}

func TestPostJSONWithRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := PostJSONWithRetry(nil, nil, server.URL, map[string]string{"k": "v"}, 3, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSONWithRetryExhausted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var attempts int
	err := PostJSONWithRetry(nil, nil, server.URL, nil, 2, 0, func(attempt, max int, err error) {
		attempts++
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)

	var statusErr HTTPStatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestDecodeJSONStrict(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}

	require.NoError(t, DecodeJSON(strings.NewReader(`{"name":"a"}`), &target))
	assert.Equal(t, "a", target.Name)

	err := DecodeJSON(strings.NewReader(`{"name":"a","extra":1}`), &target)
	assert.Error(t, err)
}
