package kucoin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukehollenback/kucoin/config"
	"github.com/lukehollenback/kucoin/exchange"
	"github.com/lukehollenback/kucoin/logging"
	"github.com/lukehollenback/kucoin/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.UnixMilli(1700000000000)

//
// recorded is what the test server saw of one request.
//
type recorded struct {
	method  string
	uri     string
	body    string
	headers http.Header
}

type recorder struct {
	mu   sync.Mutex
	seen []recorded
}

func (o *recorder) add(req recorded) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.seen = append(o.seen, req)
}

func (o *recorder) all() []recorded {
	o.mu.Lock()
	defer o.mu.Unlock()

	return append([]recorded(nil), o.seen...)
}

//
// newTestClient starts a server that records every request and answers with status and reply, and
// returns a client pointed at it with a fixed clock.
//
func newTestClient(t *testing.T, status int, reply string, opts ...Option) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		rec.add(recorded{method: r.Method, uri: r.URL.RequestURI(), body: string(body), headers: r.Header.Clone()})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(server.Close)

	base := []Option{
		WithBaseURL(server.URL + "/"),
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(logging.GetTestLogger()),
	}

	client := New(NewCredentials("key-1", "s3cr3t", "p4ssphrase"), append(base, opts...)...)

	return client, rec
}

func TestSendSignsRequest(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000","data":{"orderId":"o-1","clientOid":"c-1"}}`)

	var resp Response[OrderResult]
	err := client.Send(context.Background(), "post", HFOrdersPath, `{"side":"buy"}`, &resp)
	require.NoError(t, err)

	requests := seen.all()
	require.Len(t, requests, 1)
	req := requests[0]

	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/v1/hf/orders", req.uri)
	assert.Equal(t, `{"side":"buy"}`, req.body)
	assert.Equal(t, "application/json", req.headers.Get("Content-Type"))
	assert.Equal(t, "key-1", req.headers.Get("KC-API-KEY"))
	assert.Equal(t, "1700000000000", req.headers.Get("KC-API-TIMESTAMP"))
	assert.Equal(t, "3ZzNhwj6iXv5Ceg8I8WMbViGHOdbMXicSYEyW3szDDk=", req.headers.Get("KC-API-SIGN"))
	assert.Equal(t, "S91K+3DkHYLs76dfOmcvSaUUencfRZG3o1nWyhkhFmg=", req.headers.Get("KC-API-PASSPHRASE"))
	assert.Equal(t, "3", req.headers.Get("KC-API-KEY-VERSION"))

	assert.True(t, resp.Success())
	require.NotNil(t, resp.Data)
	assert.Equal(t, "o-1", resp.Data.OrderID)
}

func TestSendSignsQueryString(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000","data":{"items":[]}}`)

	_, err := Do[DepositList](context.Background(), client, http.MethodGet, "/api/v1/deposits?currency=BTC", nil)
	require.NoError(t, err)

	requests := seen.all()
	require.Len(t, requests, 1)
	assert.Equal(t, "/api/v1/deposits?currency=BTC", requests[0].uri)
	assert.Empty(t, requests[0].body)
	assert.Equal(t, "dRZ9sQ0MNmBWqZYGs/ruVwyXSWBag+BLEfeIe14Or04=", requests[0].headers.Get("KC-API-SIGN"))
}

func TestSendHTTPError(t *testing.T) {
	reply := `{"code":"400100","msg":"Parameter Error"}`
	client, _ := newTestClient(t, http.StatusBadRequest, reply)

	var resp Response[OrderResult]
	err := client.Send(context.Background(), http.MethodPost, HFOrdersPath, `{}`, &resp)

	var httpErr *exchange.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode())
	assert.Equal(t, reply, string(httpErr.Body()))
	assert.Equal(t, "400100", httpErr.APICode())
	assert.Equal(t, "Parameter Error", httpErr.APIMessage())
	assert.Empty(t, resp.Code, "the body of an error status must not be decoded")
}

func TestSendNullData(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"code":"200000","data":null}`)

	resp, err := Do[OrderResult](context.Background(), client, http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Nil(t, resp.Data)
	assert.NoError(t, resp.Err())
}

func TestSendAPIErrorEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"code":"200004","msg":"Balance insufficient!"}`)

	resp, err := Do[OrderResult](context.Background(), client, http.MethodGet, "/x", nil)
	require.NoError(t, err)
	assert.False(t, resp.Success())

	var apiErr exchange.APIError
	require.True(t, errors.As(resp.Err(), &apiErr))
	assert.Equal(t, "200004", apiErr.Code())
	assert.Equal(t, "Balance insufficient!", apiErr.Message())
}

func TestSendDecodeError(t *testing.T) {
	client, _ := newTestClient(t, http.StatusOK, `{"code":200000}`)

	_, err := Do[OrderResult](context.Background(), client, http.MethodGet, "/x", nil)

	var serErr *exchange.SerializationError
	require.True(t, errors.As(err, &serErr))
	assert.Equal(t, exchange.Response, serErr.Direction)
}

func TestDoEncodeErrorSendsNothing(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000"}`)

	_, err := Do[OrderResult](context.Background(), client, http.MethodPost, "/x", make(chan int))

	var serErr *exchange.SerializationError
	require.True(t, errors.As(err, &serErr))
	assert.Equal(t, exchange.Request, serErr.Direction)
	assert.Empty(t, seen.all())
}

func TestSendTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	server.Close()

	client := New(NewCredentials("k", "s", "p"), WithBaseURL(server.URL), WithLogger(logging.GetTestLogger()))

	err := client.Send(context.Background(), http.MethodGet, "/x", "", nil)

	var transportErr *exchange.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Equal(t, server.URL+"/x", transportErr.URL)
}

func TestSendCancelledContext(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000"}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := client.Send(ctx, http.MethodGet, "/x", "", nil)

	var transportErr *exchange.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, seen.all())
}

func TestSendInvalidMethodPanics(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000"}`)

	assert.Panics(t, func() {
		_ = client.Send(context.Background(), "FETCH", "/x", "", nil)
	})
	assert.Empty(t, seen.all())
}

func TestSendWithoutCredentials(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000"}`)
	client.SetCredentials(NewCredentials("", "s", "p"))

	err := client.Send(context.Background(), http.MethodGet, "/x", "", nil)

	var validationErr *exchange.ValidationError
	require.True(t, errors.As(err, &validationErr))
	assert.Empty(t, seen.all())
}

func TestSetCredentialsConcurrently(t *testing.T) {
	secrets := map[string]string{"key-a": "secret-a", "key-b": "secret-b"}

	var mismatches int64

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret, ok := secrets[r.Header.Get("KC-API-KEY")]
		expected := Sign(secret, r.Header.Get("KC-API-TIMESTAMP"), r.Method, r.URL.RequestURI(), "")

		if !ok || expected != r.Header.Get("KC-API-SIGN") {
			atomic.AddInt64(&mismatches, 1)
		}

		_, _ = io.WriteString(w, `{"code":"200000"}`)
	}))
	defer server.Close()

	client := New(NewCredentials("key-a", "secret-a", "p"), WithBaseURL(server.URL), WithLogger(logging.GetTestLogger()))

	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			for j := 0; j < 10; j++ {
				_ = client.Send(context.Background(), http.MethodGet, fmt.Sprintf("/x?i=%d&j=%d", i, j), "", nil)
			}
		}(i)
	}

	for j := 0; j < 50; j++ {
		if j%2 == 0 {
			client.SetCredentials(NewCredentials("key-b", "secret-b", "p"))
		} else {
			client.SetCredentials(NewCredentials("key-a", "secret-a", "p"))
		}
	}

	wg.Wait()

	assert.Zero(t, atomic.LoadInt64(&mismatches), "every request must be signed with one consistent credential set")
}

func TestSendRecordsMetrics(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	client, _ := newTestClient(t, http.StatusOK, `{"code":"200000"}`, WithMetrics(m))

	require.NoError(t, client.Send(context.Background(), http.MethodGet, "/x", "", nil))
	require.NoError(t, client.Send(context.Background(), http.MethodGet, "/y", "", nil))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests().WithLabelValues(http.MethodGet, metrics.OutcomeOK)))
}

func TestWithBaseURLTrimsSlash(t *testing.T) {
	client := New(nil, WithBaseURL("https://example.com/"), WithLogger(logging.GetTestLogger()))
	assert.Equal(t, "https://example.com", client.BaseURL())

	assert.Equal(t, "https://api.kucoin.com", New(nil, WithLogger(logging.GetTestLogger())).BaseURL())
}

func TestNewFromConfig(t *testing.T) {
	t.Setenv("env", "test")

	cfg := config.Default()
	cfg.BaseURL = "https://sandbox.example.com/"

	t.Setenv(cfg.KeyEnv, "")

	_, err := NewFromConfig(cfg)
	assert.Error(t, err, "credentials are read from the environment")

	t.Setenv(cfg.KeyEnv, "k")
	t.Setenv(cfg.SecretEnv, "s")
	t.Setenv(cfg.PassphraseEnv, "p")

	client, err := NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://sandbox.example.com", client.BaseURL())
	assert.NoError(t, client.credentials.Load().Validate())

	cfg.TimeoutS = 0
	_, err = NewFromConfig(cfg)
	assert.Error(t, err)
}
