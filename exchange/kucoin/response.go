package kucoin

import (
	"context"
	"encoding/json"

	"github.com/lukehollenback/kucoin/constants"
	"github.com/lukehollenback/kucoin/exchange"
)

//
// Response is the {code, msg, data} envelope that wraps every KuCoin response. Data is nil when the
// exchange omitted it or sent null, which it does for several error codes.
//
type Response[T any] struct {
	Code string `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data *T     `json:"data,omitempty"`
}

func (o *Response[T]) Success() bool {
	return o.Code == constants.SuccessCode
}

//
// Err returns an *APIError describing the rejection if the envelope does not carry the success
// code, or nil otherwise.
//
func (o *Response[T]) Err() error {
	if o.Success() {
		return nil
	}

	return &APIError{
		code:    o.Code,
		message: o.Msg,
	}
}

//
// Do serializes payload (nil means no body), dispatches it, and decodes the envelope. A payload
// that cannot be serialized fails before anything is signed or sent.
//
func Do[T any](ctx context.Context, d exchange.Dispatcher, method string, path string, payload interface{}) (*Response[T], error) {
	body, err := encode(payload)
	if err != nil {
		return nil, err
	}

	var resp Response[T]
	if err := d.Send(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func encode(payload interface{}) (string, error) {
	if payload == nil {
		return "", nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", &exchange.SerializationError{Direction: exchange.Request, Err: err}
	}

	return string(data), nil
}
