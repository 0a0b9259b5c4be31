package stream

import (
	"bufio"
	"io"
	"strings"
)

// Framing conventions of the transport: lines arrive prefixed with
// dataPrefix, and a line equal to doneMarker (after stripping) means no
// further data will arrive.
const (
	dataPrefix = "data: "
	doneMarker = "[DONE]"
)

// filter strips the transport framing from a raw line. Whitespace-only
// lines come back empty; last reports the terminal marker, after which no
// further lines may be read.
func filter(raw string) (line string, last bool) {
	line = strings.TrimPrefix(raw, dataPrefix)
	if strings.TrimSpace(line) == "" {
		return "", false
	}
	if line == doneMarker {
		return "", true
	}
	return line, false
}

// Process consumes the response body line by line, emitting one Result
// per completed envelope on the Results channel. It runs until the body
// is exhausted, the terminal marker is seen, the context is cancelled, or
// a read or decode error occurs, and closes both the body and the channel
// on every exit path. Cancellation is checked once per line and surfaces
// as the context's error; a partial buffer left at end of stream is
// dropped without error.
func (d *Decoder[T]) Process(body io.ReadCloser) {
	defer close(d.results)
	defer body.Close()

	done := d.ctx.Done()

	reader := bufio.NewReaderSize(body, 4096)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(bufio.ScanLines)

	var acc accumulator

	for {
		select {
		case <-done:
			d.results <- Result[T]{Err: d.ctx.Err()}
			return
		default:
		}

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				d.results <- Result[T]{Err: &TransportError{Err: err}}
			}
			return
		}

		line, last := filter(scanner.Text())
		if last {
			return
		}
		if line == "" {
			continue
		}

		envelope, ok := acc.feed(line)
		if !ok {
			continue
		}

		value, ok, err := d.extract([]byte(envelope))
		if err != nil {
			d.results <- Result[T]{Err: &DecodeError{Text: envelope, Err: err}}
			return
		}
		if !ok {
			continue
		}

		if carrier, ok := any(value).(MetaCarrier); ok {
			carrier.AttachMeta(d.meta)
		}
		d.results <- Result[T]{Value: value}
	}
}
