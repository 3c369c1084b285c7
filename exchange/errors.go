package exchange

import (
	"fmt"
)

//
// TransportError represents a failure to talk to the exchange at all: DNS, TCP, TLS, a cancelled
// context, or a body that could not be read. It is surfaced as-is and never retried.
//
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (o *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", o.Method, o.URL, o.Err)
}

func (o *TransportError) Unwrap() error {
	return o.Err
}

// Direction tells which side of the exchange a SerializationError happened on.
type Direction int

const (
	Request Direction = iota
	Response
)

func (o Direction) String() string {
	switch o {
	case Request:
		return "request"
	case Response:
		return "response"
	default:
		return "unknown"
	}
}

//
// SerializationError represents a request payload that could not be encoded or a response body
// that did not match the expected shape.
//
type SerializationError struct {
	Direction Direction
	Err       error
}

func (o *SerializationError) Error() string {
	return fmt.Sprintf("could not %s %s body: %s", o.verb(), o.Direction, o.Err)
}

func (o *SerializationError) Unwrap() error {
	return o.Err
}

func (o *SerializationError) verb() string {
	if o.Direction == Request {
		return "encode"
	}

	return "decode"
}

//
// ValidationError represents a request value that was rejected before it was signed or sent.
//
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field string, reason string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: reason,
	}
}

func (o *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", o.Field, o.Reason)
}
