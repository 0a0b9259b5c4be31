package client

import (
	"encoding/json"

	"github.com/plumekit/plume/internal/stream"
)

// Generation is one snapshot of a generation job. Streaming responses
// emit successive snapshots of the same job; each one supersedes the
// previous.
type Generation struct {
	ID        string  `json:"id"`
	Model     string  `json:"model"`
	Status    string  `json:"status"`
	Text      string  `json:"text"`
	Progress  float64 `json:"progress"`
	CreatedAt int64   `json:"created_at"`

	meta stream.Meta
}

// AttachMeta stores the rate-limit metadata of the response this
// generation was decoded from.
func (g *Generation) AttachMeta(m stream.Meta) { g.meta = m }

// Meta returns the rate-limit metadata attached at decode time.
func (g *Generation) Meta() stream.Meta { return g.meta }

// Event is one entry of a generation's event feed.
type Event struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt int64           `json:"created_at"`
}

// Model describes a model available to the account.
type Model struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextWindow int    `json:"context_window"`
}

// GenerationRequest carries the caller-facing parameters of a streaming
// generation call.
type GenerationRequest struct {
	Prompt string
	Model  string
}
