// Moodmix - Mood-Driven Playlist Curation API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moodmix

package generation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/moodmix/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(&config.GenerationConfig{
		BaseURL:     server.URL + "/v1/",
		APIKey:      "test-key",
		Model:       "test-model",
		Temperature: 0.3,
		Timeout:     2 * time.Second,
	})
}

func TestClient_Generate(t *testing.T) {
	t.Parallel()

	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"` +
			"```json\\n{\\\"tracks\\\":[]}\\n```" + `"}}]}`))
	})

	out, err := client.Generate(context.Background(), "the prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	// Content is passed through untouched, fences included.
	if out != "```json\n{\"tracks\":[]}\n```" {
		t.Errorf("Generate() = %q", out)
	}

	if got.Model != "test-model" || got.Temperature != 0.3 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Role != "user" || got.Messages[1].Content != "the prompt" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestClient_Generate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "quota exceeded",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, `{"error":"quota"}`, http.StatusTooManyRequests)
			},
			want: "status 429",
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: "status 502",
		},
		{
			name: "undecodable envelope",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("<html>oops</html>"))
			},
			want: "decode response envelope",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"choices":[]}`))
			},
			want: "no choices",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Generate(context.Background(), "p")
			if !errors.Is(err, ErrGenerationUnavailable) {
				t.Fatalf("Generate() error = %v, want ErrGenerationUnavailable", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestClient_Generate_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	client := NewClient(&config.GenerationConfig{BaseURL: server.URL, Model: "m", Timeout: 50 * time.Millisecond})
	if _, err := client.Generate(context.Background(), "p"); !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("Generate() error = %v, want ErrGenerationUnavailable", err)
	}
}

func TestClient_Generate_Unreachable(t *testing.T) {
	t.Parallel()

	client := NewClient(&config.GenerationConfig{BaseURL: "http://127.0.0.1:1", Model: "m", Timeout: time.Second})
	if _, err := client.Generate(context.Background(), "p"); !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("Generate() error = %v, want ErrGenerationUnavailable", err)
	}
}
