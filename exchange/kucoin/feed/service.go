package feed

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lukehollenback/kucoin/exchange/kucoin"
	"github.com/lukehollenback/kucoin/logging"
	"github.com/lukehollenback/kucoin/structs/evictingqueue"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	ws "github.com/gorilla/websocket"
)

const (
	Name = "≪feed-service≫"

	DefaultRecent = 100
	DefaultBuffer = 64

	defaultPingInterval = 18 * time.Second
	defaultPingTimeout  = 10 * time.Second
)

//
// TokenSource hands out bullet tokens for the private websocket API. The *kucoin.Client satisfies
// it, so the feed authenticates through the same signed dispatcher as every REST call.
//
type TokenSource interface {
	PrivateBullet(ctx context.Context) (*kucoin.Response[kucoin.Bullet], error)
}

//
// Message is a single frame of the private websocket API. Data is left raw so that consumers can
// decode it into the shape that the topic's subject calls for.
//
type Message struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Topic       string          `json:"topic,omitempty"`
	Subject     string          `json:"subject,omitempty"`
	ChannelType string          `json:"channelType,omitempty"`
	Code        json.RawMessage `json:"code,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
}

type command struct {
	ID             string `json:"id"`
	Type           string `json:"type"`
	Topic          string `json:"topic,omitempty"`
	PrivateChannel bool   `json:"privateChannel,omitempty"`
	Response       bool   `json:"response,omitempty"`
}

//
// Service represents a private feed service instance.
//
type Service struct {
	mu sync.Mutex

	source TokenSource
	dialer *ws.Dialer
	logger *zap.Logger

	state   state
	current *run

	topics   []string
	buffer   int
	messages chan Message
	recent   *evictingqueue.EvictingQueue[Message]
}

//
// run holds everything that belongs to one connection. The service goroutine of a run only ever
// touches its own run, so a later Start can never swap a field out from under it.
//
type run struct {
	conn     *ws.Conn
	server   kucoin.InstanceServer
	messages chan Message
	chKill   chan bool
	chDone   chan struct{}
}

type Option func(*Service)

func WithDialer(dialer *ws.Dialer) Option {
	return func(o *Service) {
		o.dialer = dialer
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Service) {
		o.logger = logger
	}
}

// WithRecent sets how many of the latest messages Recent keeps.
func WithRecent(size int) Option {
	return func(o *Service) {
		o.recent = evictingqueue.New[Message](size)
	}
}

// WithBuffer sets the capacity of the Messages channel.
func WithBuffer(size int) Option {
	return func(o *Service) {
		o.buffer = size
	}
}

func New(source TokenSource, opts ...Option) *Service {
	o := &Service{
		source: source,
		dialer: ws.DefaultDialer,
		state:  disconnected,
		topics: make([]string, 0),
		buffer: DefaultBuffer,
		recent: evictingqueue.New[Message](DefaultRecent),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.GetLogger(Name)
	}

	o.messages = make(chan Message, o.buffer)
	close(o.messages)

	return o
}

//
// Subscribe registers a private topic (e.g. "/spotMarket/tradeOrders"). Topics must be registered
// before the service is started.
//
func (o *Service) Subscribe(topic string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if topic == "" {
		return errors.New("topic must not be empty")
	}

	if o.state != disconnected {
		return errors.Errorf("cannot subscribe to %s while the feed is %s", topic, o.state)
	}

	for _, existing := range o.topics {
		if existing == topic {
			return nil
		}
	}

	o.topics = append(o.topics, topic)

	return nil
}

//
// Messages returns the stream of "message" frames for the current run. It is closed once the
// service stops.
//
func (o *Service) Messages() <-chan Message {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.messages
}

// Recent returns the latest messages, oldest first.
func (o *Service) Recent() []Message {
	return o.recent.Snapshot()
}

//
// Start obtains a bullet token, connects to the first instance server it names, and subscribes to
// every registered topic. It returns once the subscriptions have been acknowledged.
//
func (o *Service) Start(ctx context.Context) (<-chan bool, error) {
	o.mu.Lock()

	if o.state != disconnected {
		defer o.mu.Unlock()

		return nil, errors.Errorf("cannot start while the feed is %s", o.state)
	}

	o.state = connecting
	topics := append([]string(nil), o.topics...)

	o.mu.Unlock()

	//
	// Everything below talks to the network, so it runs without the lock. The connecting state keeps
	// Subscribe, Start and Stop away until we are done.
	//
	r, err := o.connect(ctx, topics)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.state = disconnected

		return nil, err
	}

	o.state = subscribed
	o.current = r
	o.messages = r.messages

	go o.service(r)

	o.logger.Info("Started.", zap.Strings("topics", topics))

	chStarted := make(chan bool, 1)
	chStarted <- true

	return chStarted, nil
}

//
// Stop tells the service to close its connection. The returned channel fires once the connection
// is closed and the Messages stream has been closed. Stopping a feed that already dropped on its
// own returns a channel that has already fired.
//
func (o *Service) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.current == nil {
		return nil, errors.New("the feed has never been started")
	}

	if o.state == connecting || o.state == connected {
		return nil, errors.Errorf("cannot stop while the feed is %s", o.state)
	}

	if o.state == subscribed {
		o.logger.Info("Stopping...")

		select {
		case o.current.chKill <- true:
		default:
		}
	}

	chStopped := make(chan bool, 1)

	go func(chDone <-chan struct{}) {
		<-chDone
		chStopped <- true
	}(o.current.chDone)

	return chStopped, nil
}

//
// connect dials the instance server named by a fresh bullet token and subscribes to each topic, one
// acknowledgement at a time.
//
func (o *Service) connect(ctx context.Context, topics []string) (*run, error) {
	//
	// Obtain a token and an instance server through the signed dispatcher.
	//
	resp, err := o.source.PrivateBullet(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "could not obtain a private bullet")
	}

	if err := resp.Err(); err != nil {
		return nil, errors.Wrap(err, "could not obtain a private bullet")
	}

	if resp.Data == nil || len(resp.Data.InstanceServers) == 0 {
		return nil, errors.New("the private bullet named no instance servers")
	}

	r := &run{
		server:   resp.Data.InstanceServers[0],
		messages: make(chan Message, o.buffer),
		chKill:   make(chan bool, 1),
		chDone:   make(chan struct{}),
	}

	//
	// Connect and wait for the welcome frame.
	//
	connectID := uuid.Must(uuid.NewV4()).String()

	r.conn, err = o.dial(ctx, r.server.Endpoint, resp.Data.Token, connectID)
	if err != nil {
		return nil, err
	}

	welcome, err := readFrame(r.conn, r.readDeadline())
	if err != nil {
		_ = r.conn.Close()
		return nil, errors.Wrap(err, "no welcome from the instance server")
	}

	if welcome.Type != "welcome" {
		_ = r.conn.Close()
		return nil, errors.Errorf("expected a welcome frame, got a %q frame", welcome.Type)
	}

	o.setState(connected)

	o.logger.Debug("Connected.", zap.String("connectId", connectID), zap.String("endpoint", r.server.Endpoint))

	for _, topic := range topics {
		if err := o.subscribe(r, topic); err != nil {
			_ = r.conn.Close()
			return nil, err
		}
	}

	return r, nil
}

func (o *Service) setState(s state) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.state = s
}

func (o *Service) dial(ctx context.Context, rawEndpoint string, token string, connectID string) (*ws.Conn, error) {
	endpoint, err := url.Parse(rawEndpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid instance server endpoint %q", rawEndpoint)
	}

	query := endpoint.Query()
	query.Set("token", token)
	query.Set("connectId", connectID)
	endpoint.RawQuery = query.Encode()

	conn, _, err := o.dialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to %s", rawEndpoint)
	}

	return conn, nil
}

func (o *Service) subscribe(r *run, topic string) error {
	id := uuid.Must(uuid.NewV4()).String()

	if err := r.write(command{ID: id, Type: "subscribe", Topic: topic, PrivateChannel: true, Response: true}); err != nil {
		return errors.Wrapf(err, "could not subscribe to %s", topic)
	}

	for {
		msg, err := readFrame(r.conn, r.readDeadline())
		if err != nil {
			return errors.Wrapf(err, "no acknowledgement for %s", topic)
		}

		switch {
		case msg.Type == "ack" && msg.ID == id:
			o.logger.Debug("Subscribed.", zap.String("topic", topic))
			return nil
		case msg.Type == "error":
			return errors.Errorf("subscription to %s was rejected (code: %s, data: %s)", topic, msg.Code, msg.Data)
		default:
			o.handleMessage(msg, r.messages)
		}
	}
}

//
// service pings the instance server and publishes frames until it is killed or the connection
// fails.
//
func (o *Service) service(r *run) {
	chMsg := make(chan Message)
	chErr := make(chan error, 1)
	chDone := make(chan struct{})

	go readMessages(r.conn, r.readDeadline(), chMsg, chErr, chDone)

	ticker := time.NewTicker(r.pingInterval())
	defer ticker.Stop()

	cont := true

	for cont {
		select {
		case <-r.chKill:
			cont = false

		case <-ticker.C:
			if err := r.write(command{ID: uuid.Must(uuid.NewV4()).String(), Type: "ping"}); err != nil {
				o.logger.Error("Could not ping the instance server.", zap.Error(err))

				cont = false
			}

		case msg := <-chMsg:
			o.handleMessage(msg, r.messages)

		case err := <-chErr:
			o.logger.Error("Could not read the next frame from the private feed.", zap.Error(err))

			cont = false
		}
	}

	//
	// Close our websocket connection and the stream.
	//
	close(chDone)

	if err := r.conn.Close(); err != nil {
		o.logger.Warn("Failed to close the websocket connection.", zap.Error(err))
	}

	o.mu.Lock()
	o.state = disconnected
	close(r.messages)
	close(r.chDone)
	o.mu.Unlock()

	o.logger.Info("Stopped.")
}

func readMessages(conn *ws.Conn, deadline time.Duration, chMsg chan<- Message, chErr chan<- error, chDone <-chan struct{}) {
	for {
		msg, err := readFrame(conn, deadline)
		if err != nil {
			chErr <- err
			return
		}

		select {
		case chMsg <- msg:
		case <-chDone:
			return
		}
	}
}

//
// readFrame reads the next frame. The instance server pongs every ping, so a connection that stays
// silent for longer than one ping interval plus its timeout is treated as dead.
//
func readFrame(conn *ws.Conn, deadline time.Duration) (Message, error) {
	var msg Message

	if err := conn.SetReadDeadline(time.Now().Add(deadline)); err != nil {
		return msg, err
	}

	err := conn.ReadJSON(&msg)

	return msg, err
}

func (o *Service) handleMessage(msg Message, messages chan<- Message) {
	switch msg.Type {
	case "message":
		o.recent.Add(msg)

		select {
		case messages <- msg:
		default:
			o.logger.Warn("Dropped a message because the consumer is not keeping up.", zap.String("topic", msg.Topic))
		}

	case "error":
		o.logger.Error("The private feed reported an error.", zap.ByteString("code", msg.Code), zap.ByteString("data", msg.Data))

	default:
		o.logger.Debug("Received a frame.", zap.String("type", msg.Type), zap.String("id", msg.ID))
	}
}

func (o *run) write(cmd command) error {
	if err := o.conn.SetWriteDeadline(time.Now().Add(o.pingTimeout())); err != nil {
		return err
	}

	return o.conn.WriteJSON(cmd)
}

func (o *run) readDeadline() time.Duration {
	return o.pingInterval() + o.pingTimeout()
}

func (o *run) pingInterval() time.Duration {
	if interval := o.server.PingEvery(); interval > 0 {
		return interval
	}

	return defaultPingInterval
}

func (o *run) pingTimeout() time.Duration {
	if timeout := o.server.PingDeadline(); timeout > 0 {
		return timeout
	}

	return defaultPingTimeout
}
