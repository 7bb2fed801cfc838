package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSuggester(t *testing.T) {
	text, err := StaticSuggester{}.Suggest(context.Background())
	require.NoError(t, err)
	assert.Len(t, strings.Split(text, SuggestionSeparator), 3)
}

func newUpstream(t *testing.T, h http.HandlerFunc) *HFSuggester {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return NewHFSuggester(srv.URL, "test-key", 2*time.Second)
}

func TestHFSuggester(t *testing.T) {
	want := "What's your favourite film?||Where would you travel next?||What made you laugh today?"

	s := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Inputs, SuggestionSeparator)

		_ = json.NewEncoder(w).Encode([]hfGeneration{{GeneratedText: want}})
	})

	text, err := s.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, text)
}

func TestHFSuggesterStripsPrompt(t *testing.T) {
	s := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]hfGeneration{{GeneratedText: suggestPrompt + " A?||B?||C?"}})
	})

	text, err := s.Suggest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A?||B?||C?", text)
}

func TestHFSuggesterFailures(t *testing.T) {
	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"non 2xx", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		}},
		{"malformed", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error":`))
		}},
		{"empty list", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}},
		{"only the prompt", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode([]hfGeneration{{GeneratedText: suggestPrompt}})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newUpstream(t, tt.h).Suggest(context.Background())
			assert.ErrorIs(t, err, ErrUpstream)
		})
	}
}

func TestHFSuggesterUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHFSuggester(url, "k", time.Second).Suggest(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
