package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/logrusorgru/aurora"
	"github.com/lukehollenback/kucoin/config"
	"github.com/lukehollenback/kucoin/constants"
	"github.com/lukehollenback/kucoin/exchange"
	"github.com/lukehollenback/kucoin/logging"
	"github.com/lukehollenback/kucoin/metrics"
	"go.uber.org/zap"
)

var methods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

//
// Client implements the exchange.Dispatcher interface for the KuCoin API. It is safe for concurrent
// use: each call signs from its own snapshot of the credentials, and the underlying *http.Client is
// shared across calls.
//
type Client struct {
	credentials atomic.Pointer[Credentials]
	baseURL     string
	httpClient  *http.Client
	now         func() time.Time
	logger      *zap.Logger
	metrics     *metrics.Metrics
	au          aurora.Aurora
}

type Option func(*Client)

// WithBaseURL points the client at a host other than production (no trailing slash).
func WithBaseURL(baseURL string) Option {
	return func(o *Client) {
		o.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *Client) {
		o.httpClient = httpClient
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Client) {
		o.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Client) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Client) {
		o.metrics = m
	}
}

// WithColors turns on ANSI colouring of the method and status in debug traces.
func WithColors(enabled bool) Option {
	return func(o *Client) {
		o.au = aurora.NewAurora(enabled)
	}
}

func New(credentials *Credentials, opts ...Option) *Client {
	o := &Client{
		baseURL:    constants.ProductionHost,
		httpClient: &http.Client{Timeout: constants.DefaultTimeout},
		now:        time.Now,
		au:         aurora.NewAurora(false),
	}

	o.credentials.Store(credentials)

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.GetLogger("KuCoinClient")
	}

	return o
}

//
// NewFromConfig builds a client from a config, reading the credentials from the environment
// variables it names. Request traces are only logged when the config enables debug. Explicit
// options are applied after the config and win over it.
//
func NewFromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	key, secret, passphrase, err := cfg.LookupCredentials()
	if err != nil {
		return nil, err
	}

	credentials := NewCredentials(key, secret, passphrase)
	if err := credentials.Validate(); err != nil {
		return nil, err
	}

	logger := logging.GetLogger("KuCoinClient")
	if !cfg.Debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}

	base := []Option{
		WithBaseURL(cfg.BaseURL),
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout()}),
		WithColors(cfg.ColorLogs),
		WithLogger(logger),
	}

	return New(credentials, append(base, opts...)...), nil
}

//
// SetCredentials swaps in a whole new credential triple. Calls that already took their snapshot
// finish with the old one; every call that starts afterwards signs with the new one.
//
func (o *Client) SetCredentials(credentials *Credentials) {
	o.credentials.Store(credentials)
}

func (o *Client) BaseURL() string {
	return o.baseURL
}

//
// Send implements the exchange.Dispatcher interface. It panics if method is not an HTTP verb, since
// that can only be a programming error in an endpoint builder.
//
func (o *Client) Send(ctx context.Context, method string, path string, body string, out interface{}) error {
	method = normalizeMethod(method)

	credentials := o.credentials.Load()
	if err := credentials.Validate(); err != nil {
		return err
	}

	url := o.baseURL + path

	//
	// Build the request first so that nothing but the signature itself sits between taking the
	// timestamp and handing the request to the transport.
	//
	var reader io.Reader = http.NoBody
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return &exchange.TransportError{Method: method, URL: url, Err: err}
	}

	start := o.now()

	req.Header = credentials.Headers(Timestamp(start), method, path, body)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		o.observe(method, path, metrics.OutcomeTransport, 0, start)

		return &exchange.TransportError{Method: method, URL: url, Err: err}
	}

	defer resp.Body.Close()

	//
	// Read the response.
	//
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		o.observe(method, path, metrics.OutcomeTransport, resp.StatusCode, start)

		return &exchange.TransportError{Method: method, URL: url, Err: err}
	}

	//
	// Make sure the status code was not an error before trying to decode anything.
	//
	if resp.StatusCode >= http.StatusBadRequest {
		o.observe(method, path, metrics.OutcomeHTTPStatus, resp.StatusCode, start)

		return exchange.NewHTTPError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			o.observe(method, path, metrics.OutcomeDecode, resp.StatusCode, start)

			return &exchange.SerializationError{Direction: exchange.Response, Err: err}
		}
	}

	o.observe(method, path, metrics.OutcomeOK, resp.StatusCode, start)

	return nil
}

func (o *Client) observe(method string, path string, outcome string, status int, start time.Time) {
	elapsed := o.now().Sub(start)

	o.metrics.Observe(method, outcome, elapsed)

	if ce := o.logger.Check(zap.DebugLevel, "dispatched"); ce != nil {
		ce.Write(
			zap.String("request", fmt.Sprintf("%s %s", o.au.Bold(method), path)),
			zap.String("status", o.colorStatus(status)),
			zap.String("outcome", outcome),
			zap.Duration("elapsed", elapsed),
		)
	}
}

func (o *Client) colorStatus(status int) string {
	switch {
	case status == 0:
		return fmt.Sprint(o.au.Red("-"))
	case status >= http.StatusBadRequest:
		return fmt.Sprint(o.au.Red(status))
	default:
		return fmt.Sprint(o.au.Green(status))
	}
}

func normalizeMethod(method string) string {
	upper := strings.ToUpper(method)
	if _, ok := methods[upper]; !ok {
		panic(fmt.Sprintf("kucoin: %q is not an HTTP method", method))
	}

	return upper
}
