package exchange

import (
	"fmt"

	"github.com/buger/jsonparser"
)

//
// HTTPError represents an error due to a 4xx or 5xx response from an API endpoint. When dealing
// with cryptocurrency exchange APIs, such a response almost always means that something critically
// wrong has occurred. The raw body is kept so that callers can inspect what the exchange said.
//
type HTTPError struct {
	statusCode int
	body       []byte
}

func NewHTTPError(statusCode int, body []byte) *HTTPError {
	return &HTTPError{
		statusCode: statusCode,
		body:       body,
	}
}

func (o *HTTPError) StatusCode() int {
	return o.statusCode
}

func (o *HTTPError) Body() []byte {
	return o.body
}

//
// APICode returns the exchange's own error code from the body, if the body is a JSON object with a
// "code" member. Both string and numeric codes are returned in their textual form.
//
func (o *HTTPError) APICode() string {
	return o.field("code")
}

//
// APIMessage returns the exchange's error message from the body, if there is one.
//
func (o *HTTPError) APIMessage() string {
	return o.field("msg")
}

func (o *HTTPError) field(key string) string {
	value, dataType, _, err := jsonparser.Get(o.body, key)
	if err != nil {
		return ""
	}

	switch dataType {
	case jsonparser.String:
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return ""
		}

		return s
	case jsonparser.Number:
		return string(value)
	default:
		return ""
	}
}

func (o *HTTPError) Error() string {
	if code := o.APICode(); code != "" {
		return fmt.Sprintf(
			"server responded with a %d status code (code: %s, message: %s)",
			o.statusCode, code, o.APIMessage(),
		)
	}

	return fmt.Sprintf("server responded with a %d status code", o.statusCode)
}
