package exchange

import (
	"context"
)

//
// Dispatcher generically provides an interface to an object that can sign and send a single request
// against a cryptocurrency exchange's private REST API. Endpoint builders depend on it rather than
// on a concrete client so that every endpoint shares one send/parse pipeline.
//
// A failed call returns a *TransportError, *HTTPError or *SerializationError, which callers can
// tell apart with errors.As.
//
type Dispatcher interface {

	//
	// Send signs and issues one request. The path must already carry any query string, and body must
	// be the exact serialized payload (or "" for bodyless requests). On success the response body is
	// decoded into out.
	//
	Send(ctx context.Context, method string, path string, body string, out interface{}) error
}
