package stream

import (
	"encoding/json"
	"strings"
)

// Envelope is the transport's standard response wrapper: one object
// holding a single ordered list of entities.
type Envelope[E any] struct {
	Data []E `json:"data"`
}

// Last decodes an envelope and returns the newest element of its inner
// list. Earlier elements are progress snapshots superseded by the last
// one. An empty list produces nothing without error.
func Last[E any](data []byte) (E, bool, error) {
	var env Envelope[E]
	if err := json.Unmarshal(data, &env); err != nil {
		var zero E
		return zero, false, err
	}
	if n := len(env.Data); n > 0 {
		return env.Data[n-1], true, nil
	}
	var zero E
	return zero, false, nil
}

// accumulator collects stream lines until they form one decodable
// envelope. Completion is a bracket-depth heuristic, not a JSON parse:
// the envelope convention is one object wrapping one array, so the buffer
// is decodable either when all brackets balance out or when exactly those
// two wrapping scopes remain open (curly+square == 2) after a line that
// closed something. In the latter case the server never sent the closing
// brackets for this chunk and they are synthesized from the counters.
type accumulator struct {
	buf    strings.Builder
	curly  int
	square int
	seen   bool
}

// feed appends one line and reports whether the buffer now holds a
// complete envelope. On completion it returns the closed envelope text
// and resets the buffer and counters for the next chunk.
func (a *accumulator) feed(line string) (string, bool) {
	dc := strings.Count(line, "{") - strings.Count(line, "}")
	ds := strings.Count(line, "[") - strings.Count(line, "]")
	a.curly += dc
	a.square += ds
	if strings.ContainsAny(line, "{}[]") {
		a.seen = true
	}
	a.buf.WriteString(line)
	a.buf.WriteByte('\n')

	if !a.complete(dc + ds) {
		return "", false
	}

	text := strings.TrimSpace(a.buf.String())
	text = strings.TrimSuffix(text, ",")
	text += strings.Repeat("]", a.square) + strings.Repeat("}", a.curly)

	a.buf.Reset()
	a.curly = 0
	a.square = 0
	a.seen = false

	return text, true
}

// complete decides whether the buffer is decodable after a line whose
// bracket delta was d. A line that only opens scopes (d > 0) can never
// finish an envelope, which keeps a chunk's own opening line from
// triggering a premature empty decode.
func (a *accumulator) complete(d int) bool {
	if !a.seen {
		return false
	}
	if a.curly == 0 && a.square == 0 {
		return true
	}
	return a.curly+a.square == 2 && a.curly >= 0 && a.square >= 0 && d <= 0
}
