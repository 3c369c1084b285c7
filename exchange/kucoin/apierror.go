package kucoin

import "fmt"

//
// APIError implements the exchange.APIError interface for envelopes that KuCoin returned with a
// 2xx status but a code other than 200000.
//
type APIError struct {
	code    string
	message string
}

func (o *APIError) Code() string {
	return o.code
}

func (o *APIError) Message() string {
	return o.message
}

func (o *APIError) Error() string {
	return fmt.Sprintf(
		"the KuCoin endpoint returned an API error (code: %s, message: %s)",
		o.Code(), o.Message(),
	)
}
