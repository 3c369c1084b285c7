package kucoin

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lukehollenback/kucoin/exchange"
)

const redacted = "[REDACTED]"

//
// Secret holds a single sensitive string. It never prints or marshals its contents. The plaintext
// only comes back out through Reveal.
//
// Secrets are not comparable with ==.
//
type Secret struct {
	_     [0]func()
	value string
}

func NewSecret(value string) Secret {
	return Secret{value: value}
}

// Reveal returns the plaintext. Call it only at the point of use.
func (o Secret) Reveal() string {
	return o.value
}

func (o Secret) IsZero() bool {
	return o.value == ""
}

func (o Secret) String() string {
	return redacted
}

func (o Secret) GoString() string {
	return "kucoin.Secret{" + redacted + "}"
}

//
// Format implements fmt.Formatter so that every verb, including %#v and %x, renders the
// redaction marker rather than the underlying bytes.
//
func (o Secret) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = io.WriteString(f, o.GoString())
		return
	}

	_, _ = io.WriteString(f, redacted)
}

func (o Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}

func (o Secret) MarshalText() ([]byte, error) {
	return []byte(redacted), nil
}

//
// UnmarshalJSON lets secrets handed back by the exchange (e.g. a freshly created sub-account API
// secret) land directly in a Secret without ever sitting in a plain string field.
//
func (o *Secret) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}

	o.value = value

	return nil
}

//
// Credentials represents the key, secret, and passphrase triple that authenticates every private
// request. It is immutable once constructed; a client swaps in a whole new value rather than editing
// one in place.
//
type Credentials struct {
	key        Secret
	secret     Secret
	passphrase Secret
}

func NewCredentials(key string, secret string, passphrase string) *Credentials {
	return &Credentials{
		key:        NewSecret(key),
		secret:     NewSecret(secret),
		passphrase: NewSecret(passphrase),
	}
}

func (o *Credentials) Validate() error {
	switch {
	case o == nil:
		return exchange.NewValidationError("credentials", "not set")
	case o.key.IsZero():
		return exchange.NewValidationError("credentials", "key is empty")
	case o.secret.IsZero():
		return exchange.NewValidationError("credentials", "secret is empty")
	case o.passphrase.IsZero():
		return exchange.NewValidationError("credentials", "passphrase is empty")
	}

	return nil
}

func (o Credentials) String() string {
	return "kucoin.Credentials{" + redacted + "}"
}

func (o Credentials) GoString() string {
	return o.String()
}

// Format keeps the unexported secrets out of reflection-based printing.
func (o Credentials) Format(f fmt.State, _ rune) {
	_, _ = io.WriteString(f, o.String())
}

func (o Credentials) MarshalJSON() ([]byte, error) {
	return json.Marshal(redacted)
}
