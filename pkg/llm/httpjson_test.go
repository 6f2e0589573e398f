package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON_DecodesSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		_, _ = w.Write([]byte(`{"text":"ok"}`))
	}))
	defer srv.Close()

	var out struct {
		Text string `json:"text"`
	}
	err := PostJSON(context.Background(), srv.Client(), "test", srv.URL, map[string]string{"X-Key": "secret"}, map[string]string{"q": "hi"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Text)
}

func TestPostJSON_ErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{name: "nested", body: `{"error":{"message":"quota exceeded"}}`, message: "quota exceeded"},
		{name: "flat", body: `{"error":"model not found"}`, message: "model not found"},
		{name: "plain", body: "bad gateway\n", message: "bad gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := PostJSON(context.Background(), srv.Client(), "test", srv.URL, nil, struct{}{}, &struct{}{})

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadGateway, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}
