package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plumekit/plume/internal/config"
	"github.com/plumekit/plume/internal/stream"
)

// DefaultAPIBase is used when the configuration does not override it.
const DefaultAPIBase = "https://api.plume.dev"

// defaultHeaders returns the default headers for the API requests.
func defaultHeaders() map[string]string {
	return map[string]string{
		"Plume-Client":  "plume-cli",
		"Plume-Version": "2024-06-01",
	}
}

// getHTTPClient returns a singleton HTTP client
var (
	httpClient     *http.Client
	httpClientOnce sync.Once
	defaultTimeout = 60 * time.Second
)

func getHTTPClient(ctx context.Context) *http.Client {
	httpClientOnce.Do(func() {
		transport := &http.Transport{
			MaxIdleConns:       100,
			IdleConnTimeout:    90 * time.Second,
			DisableCompression: false,
			DisableKeepAlives:  false,
			ForceAttemptHTTP2:  true,
		}

		transport.DialContext = (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext

		httpClient = &http.Client{
			Transport: transport,
		}
	})

	// Clone the shared client so a per-call timeout never leaks into it.
	clientCopy := *httpClient
	if deadline, ok := ctx.Deadline(); ok {
		clientCopy.Timeout = time.Until(deadline)
	} else {
		clientCopy.Timeout = defaultTimeout
	}
	return &clientCopy
}

// apiBase returns the API base URL for the given configuration.
func apiBase(cfg config.Config) string {
	if cfg.BaseURL != "" {
		return strings.TrimSuffix(cfg.BaseURL, "/")
	}
	return DefaultAPIBase
}

// newRequest builds an authenticated API request with the standard
// headers. A nil payload produces a request without a body.
func newRequest(ctx context.Context, cfg config.Config, method, path string, payload any) (*http.Request, error) {
	key, err := getAPIKey()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase(cfg)+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range defaultHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// statusError drains the response body into an error for non-200 responses.
func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
}

// metaFromHeader parses the rate-limit headers the API sets on every
// response.
func metaFromHeader(h http.Header) stream.Meta {
	meta := stream.Meta{}
	meta.Limit, _ = strconv.Atoi(h.Get("X-RateLimit-Limit"))
	meta.Remaining, _ = strconv.Atoi(h.Get("X-RateLimit-Remaining"))
	if sec, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil && sec > 0 {
		meta.ResetAt = time.Unix(sec, 0)
	}
	return meta
}

// prepareGeneration builds the payload for a streaming generation call.
func prepareGeneration(req GenerationRequest) map[string]any {
	payload := make(map[string]any, 3)
	payload["prompt"] = req.Prompt
	payload["model"] = req.Model
	payload["stream"] = true
	return payload
}

// StreamGeneration issues one streaming generation call and returns a
// channel of decoded generation snapshots. The channel is closed when the
// stream ends, fails, or ctx is cancelled; the response body is released
// on every path.
func StreamGeneration(ctx context.Context, cfg config.Config, genReq GenerationRequest) (<-chan stream.Result[*Generation], error) {
	req, err := newRequest(ctx, cfg, http.MethodPost, "/v1/generations", prepareGeneration(genReq))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := getHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	decoder := stream.NewDecoder(ctx, metaFromHeader(resp.Header), stream.Last[*Generation])
	go decoder.Process(resp.Body)

	return decoder.Results(), nil
}

// StreamEvents follows the event feed of an existing generation.
func StreamEvents(ctx context.Context, cfg config.Config, generationID string) (<-chan stream.Result[*Event], error) {
	req, err := newRequest(ctx, cfg, http.MethodGet, "/v1/generations/"+generationID+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := getHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, statusError(resp)
	}

	decoder := stream.NewDecoder(ctx, metaFromHeader(resp.Header), stream.Last[*Event])
	go decoder.Process(resp.Body)

	return decoder.Results(), nil
}

// ListModels fetches the models available to the account.
func ListModels(ctx context.Context, cfg config.Config) ([]Model, error) {
	req, err := newRequest(ctx, cfg, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, err
	}

	resp, err := getHTTPClient(ctx).Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Printf("failed to close response body: %v\n", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var result stream.Envelope[Model]
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Data, nil
}
