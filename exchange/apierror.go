package exchange

//
// APIError generically provides an interface to objects that represent a first-class error provided
// in the response of a request against a cryptocurrency exchange's API. Exchanges that wrap every
// response in an envelope (e.g. KuCoin's {code, msg, data}) report rejections this way even when
// the HTTP status was 2xx.
//
type APIError interface {
	error

	//
	// Code returns the actual error code provided by the API (if there was one).
	//
	Code() string

	//
	// Message returns the actual error message provided by the API (if there was one).
	//
	Message() string
}
