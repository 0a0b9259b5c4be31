package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/plumekit/plume/internal/config"
)

// TestStreamGeneration verifies a streaming call decodes successive
// snapshots and stamps the response's rate-limit metadata on them.
func TestStreamGeneration(t *testing.T) {
	t.Setenv("PLUME_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/generations", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "text/event-stream", r.Header.Get("Accept"))

		w.Header().Set("X-RateLimit-Limit", "100")
		w.Header().Set("X-RateLimit-Remaining", "99")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.Header().Set("Content-Type", "text/event-stream")

		fmt.Fprint(w, "data: {\"data\":[{\"id\":\"gen_1\",\"status\":\"running\",\"text\":\"Hel\",\"progress\":0.4}]}\n")
		fmt.Fprint(w, "\n")
		fmt.Fprint(w, "data: {\"data\":[{\"id\":\"gen_1\",\"status\":\"complete\",\"text\":\"Hello\",\"progress\":1}]}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	cfg := config.Config{BaseURL: srv.URL}
	results, err := StreamGeneration(context.Background(), cfg, GenerationRequest{
		Prompt: "say hello",
		Model:  "plume-2",
	})
	require.NoError(t, err)

	var snapshots []*Generation
	for r := range results {
		require.NoError(t, r.Err)
		snapshots = append(snapshots, r.Value)
	}

	require.Len(t, snapshots, 2)
	require.Equal(t, "Hel", snapshots[0].Text)
	require.Equal(t, "running", snapshots[0].Status)
	require.Equal(t, "Hello", snapshots[1].Text)
	require.Equal(t, "complete", snapshots[1].Status)

	meta := snapshots[1].Meta()
	require.Equal(t, 100, meta.Limit)
	require.Equal(t, 99, meta.Remaining)
	require.Equal(t, time.Unix(1700000000, 0), meta.ResetAt)
}

// TestStreamGenerationStatusError verifies a non-200 response surfaces
// the status and body instead of a stream.
func TestStreamGenerationStatusError(t *testing.T) {
	t.Setenv("PLUME_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid model"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := config.Config{BaseURL: srv.URL}
	_, err := StreamGeneration(context.Background(), cfg, GenerationRequest{Prompt: "x", Model: "bogus"})

	require.Error(t, err)
	require.Contains(t, err.Error(), "400")
	require.Contains(t, err.Error(), "invalid model")
}

// TestStreamEvents verifies the event feed endpoint decodes one event per
// envelope.
func TestStreamEvents(t *testing.T) {
	t.Setenv("PLUME_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/generations/gen_1/events", r.URL.Path)

		fmt.Fprint(w, "data: {\"data\":[{\"type\":\"queued\",\"payload\":{},\"created_at\":1}]}\n")
		fmt.Fprint(w, "data: {\"data\":[{\"type\":\"progress\",\"payload\":{\"pct\":50},\"created_at\":2}]}\n")
		fmt.Fprint(w, "data: [DONE]\n")
	}))
	defer srv.Close()

	cfg := config.Config{BaseURL: srv.URL}
	results, err := StreamEvents(context.Background(), cfg, "gen_1")
	require.NoError(t, err)

	var events []*Event
	for r := range results {
		require.NoError(t, r.Err)
		events = append(events, r.Value)
	}

	require.Len(t, events, 2)
	require.Equal(t, "queued", events[0].Type)
	require.Equal(t, "progress", events[1].Type)
	require.JSONEq(t, `{"pct":50}`, string(events[1].Payload))
}

// TestListModels verifies the non-streaming models endpoint.
func TestListModels(t *testing.T) {
	t.Setenv("PLUME_API_KEY", "test-key")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/models", r.URL.Path)
		fmt.Fprint(w, `{"data":[{"id":"plume-2","name":"Plume 2","context_window":128000}]}`)
	}))
	defer srv.Close()

	cfg := config.Config{BaseURL: srv.URL}
	models, err := ListModels(context.Background(), cfg)

	require.NoError(t, err)
	require.Len(t, models, 1)
	require.Equal(t, "plume-2", models[0].ID)
	require.Equal(t, 128000, models[0].ContextWindow)
}

// TestAPIKeyFromEnv verifies the environment variable wins over stored
// credentials.
func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("PLUME_API_KEY", "env-key")

	key, err := getAPIKey()

	require.NoError(t, err)
	require.Equal(t, "env-key", key)
}

// TestMetaFromHeader verifies rate-limit header parsing, including
// missing headers.
func TestMetaFromHeader(t *testing.T) {
	h := http.Header{}
	h.Set("X-RateLimit-Limit", "10")
	h.Set("X-RateLimit-Remaining", "3")
	h.Set("X-RateLimit-Reset", "1700000000")

	meta := metaFromHeader(h)
	require.Equal(t, 10, meta.Limit)
	require.Equal(t, 3, meta.Remaining)
	require.Equal(t, time.Unix(1700000000, 0), meta.ResetAt)

	empty := metaFromHeader(http.Header{})
	require.Zero(t, empty.Limit)
	require.True(t, empty.ResetAt.IsZero())
}
