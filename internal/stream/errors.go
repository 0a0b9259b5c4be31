package stream

import "fmt"

// TransportError reports a failure reading the next line of the response
// stream. It is terminal; nothing buffered is salvaged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("stream read failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports an envelope whose brackets balanced but which did
// not decode into the expected shape. It is terminal; the malformed chunk
// cannot be recovered without re-issuing the request.
type DecodeError struct {
	Text string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode envelope %q: %v", e.Text, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
