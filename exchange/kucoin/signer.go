package kucoin

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"time"

	"github.com/lukehollenback/kucoin/constants"
)

// Timestamp renders t as milliseconds since the epoch, the form KC-API-TIMESTAMP expects.
func Timestamp(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

//
// Prehash builds the string that gets signed: the timestamp, the upper-case method, the path
// (including its query string), and the raw body, concatenated with no separators. An empty body
// contributes an empty string.
//
func Prehash(timestamp string, method string, path string, body string) string {
	return timestamp + method + path + body
}

// Sign returns base64(HMAC-SHA256(secret, prehash)).
func Sign(secret string, timestamp string, method string, path string, body string) string {
	return hmacBase64(secret, Prehash(timestamp, method, path, body))
}

//
// SignPassphrase returns base64(HMAC-SHA256(secret, passphrase)). Version 2+ API keys must send the
// passphrase signed with the API secret instead of in plaintext.
//
func SignPassphrase(secret string, passphrase string) string {
	return hmacBase64(secret, passphrase)
}

func hmacBase64(key string, message string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(message))

	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

//
// Headers derives the signed header set for exactly one (timestamp, method, path, body) tuple. This
// is the only place the credentials are revealed.
//
func (o *Credentials) Headers(timestamp string, method string, path string, body string) http.Header {
	secret := o.secret.Reveal()

	headers := make(http.Header, 6)
	headers.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	headers.Set(constants.HeaderKey, o.key.Reveal())
	headers.Set(constants.HeaderSign, Sign(secret, timestamp, method, path, body))
	headers.Set(constants.HeaderTimestamp, timestamp)
	headers.Set(constants.HeaderPassphrase, SignPassphrase(secret, o.passphrase.Reveal()))
	headers.Set(constants.HeaderKeyVersion, constants.KeyVersion)

	return headers
}
