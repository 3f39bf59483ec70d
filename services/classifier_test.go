package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// completionServer answers every chat completion with content.
func completionServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req struct {
			Model          string `json:"model"`
			ResponseFormat struct {
				Type string `json:"type"`
			} `json:"response_format"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGroqClassifier(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		content string
		want    ClassificationResult
	}{
		{"single name", http.StatusOK, `{"department": "water supply"}`, Classified{Department: "Water Supply"}},
		{"list of names", http.StatusOK, `{"department": ["Sanitation", "Health"]}`, Classified{Department: "Sanitation"}},
		{"unknown department", http.StatusOK, `{"department": "Tourism"}`, Unavailable{Reason: `model suggested unknown department "Tourism"`}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, tt.status, tt.content)
			c := NewGroqClassifier("test-key", srv.URL, "test-model", zap.NewNop())
			assert.Equal(t, tt.want, c.Classify(context.Background(), "No water", "The tap is dry"))
		})
	}

	t.Run("malformed content", func(t *testing.T) {
		srv := completionServer(t, http.StatusOK, "Water Supply")
		c := NewGroqClassifier("test-key", srv.URL, "test-model", zap.NewNop())
		_, ok := c.Classify(context.Background(), "t", "d").(Unavailable)
		assert.True(t, ok)
	})

	t.Run("service error", func(t *testing.T) {
		srv := completionServer(t, http.StatusTooManyRequests, "")
		c := NewGroqClassifier("test-key", srv.URL, "test-model", zap.NewNop())
		res, ok := c.Classify(context.Background(), "t", "d").(Unavailable)
		require.True(t, ok)
		assert.Contains(t, res.Reason, "classification service error")
	})
}

func TestGroqClassifierWithoutKey(t *testing.T) {
	c := NewGroqClassifier("", "", "m", zap.NewNop())
	assert.Equal(t, Unavailable{Reason: "GROQ_API_KEY is not set"}, c.Classify(context.Background(), "t", "d"))
}

func TestParseDepartment(t *testing.T) {
	tests := []struct {
		content string
		want    string
		wantErr bool
	}{
		{`{"department":"Health"}`, "Health", false},
		{` {"department":[" ", "Education"]} `, "Education", false},
		{`{"department":""}`, "", true},
		{`{"department":[]}`, "", true},
		{`{"department":42}`, "", true},
		{`{}`, "", true},
		{`not json`, "", true},
	}
	for _, tt := range tests {
		got, err := parseDepartment(tt.content)
		if tt.wantErr {
			assert.Error(t, err, tt.content)
			continue
		}
		require.NoError(t, err, tt.content)
		assert.Equal(t, tt.want, got)
	}
}
