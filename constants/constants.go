package constants

import (
	"time"
)

const (
	//
	// ProductionHost is the KuCoin REST API host that every client talks to unless configured
	// otherwise.
	//
	ProductionHost = "https://api.kucoin.com"

	DefaultTimeout = 10 * time.Second

	//
	// SuccessCode is the "code" value that KuCoin places in the envelope of every successful
	// response. Anything else is an API-level rejection.
	//
	SuccessCode = "200000"
)

// Authentication header names.
const (
	HeaderContentType = "Content-Type"
	HeaderKey         = "KC-API-KEY"
	HeaderSign        = "KC-API-SIGN"
	HeaderTimestamp   = "KC-API-TIMESTAMP"
	HeaderPassphrase  = "KC-API-PASSPHRASE"
	HeaderKeyVersion  = "KC-API-KEY-VERSION"

	ContentTypeJSON = "application/json"
	KeyVersion      = "3"
)

// Environment variables that carry credentials.
const (
	EnvAPIKey        = "KUCOIN_API_KEY"
	EnvAPISecret     = "KUCOIN_API_SECRET"
	EnvAPIPassphrase = "KUCOIN_API_PASSPHRASE"
)
