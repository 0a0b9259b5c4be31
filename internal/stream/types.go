package stream

import (
	"context"
	"time"
)

// Extractor turns one completed envelope into at most one value. The
// boolean reports whether a value was produced; a structurally complete
// envelope may still carry nothing (an empty inner list).
type Extractor[T any] func(data []byte) (T, bool, error)

// Meta holds response-level rate-limit information, shared read-only by
// every value decoded from the same HTTP response.
type Meta struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// MetaCarrier is implemented by decoded types that want the response
// metadata stamped on them before they are emitted.
type MetaCarrier interface {
	AttachMeta(Meta)
}

// Result is one emission from a Decoder: a decoded value or a terminal
// error, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// Decoder reassembles complete envelopes from a line-oriented response
// stream and emits decoded values one at a time.
type Decoder[T any] struct {
	ctx     context.Context
	extract Extractor[T]
	meta    Meta
	results chan Result[T]
}

// NewDecoder creates a decoder that applies extract to each completed
// envelope and stamps meta on values that carry metadata.
func NewDecoder[T any](ctx context.Context, meta Meta, extract Extractor[T]) *Decoder[T] {
	return &Decoder[T]{
		ctx:     ctx,
		extract: extract,
		meta:    meta,
		results: make(chan Result[T]),
	}
}

// Results returns the channel Process emits on. It is closed when the
// stream ends, fails, or is cancelled.
func (d *Decoder[T]) Results() <-chan Result[T] {
	return d.results
}
