package analysis

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Generator sends a prompt to a text-generation backend and returns the raw
// text it produced. It does not interpret the text.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// TransportKind classifies a failed generation call.
type TransportKind string

const (
	TransportTimeout     TransportKind = "timeout"
	TransportUnreachable TransportKind = "unreachable"
)

// TransportError is returned by generators when the backend could not be
// reached, answered with a non-success status or exceeded the time bound.
type TransportError struct {
	Kind TransportKind
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classifyTransport turns a client error into a TransportError, picking the
// timeout kind for deadline and network timeout errors.
func classifyTransport(err error) *TransportError {
	var te *TransportError
	if errors.As(err, &te) {
		return te
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &TransportError{Kind: TransportTimeout, Err: err}
	}
	return &TransportError{Kind: TransportUnreachable, Err: err}
}
