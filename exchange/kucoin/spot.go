package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/gofrs/uuid"
	"github.com/lukehollenback/kucoin/exchange"
	"github.com/shopspring/decimal"
)

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderType string

const (
	Limit  OrderType = "limit"
	Market OrderType = "market"
)

// STP is the self trade prevention strategy.
type STP string

const (
	CancelNewest      STP = "CN"
	CancelOldest      STP = "CO"
	CancelBoth        STP = "CB"
	DecreaseAndCancel STP = "DC"
)

type TimeInForce string

const (
	GoodTillCancelled TimeInForce = "GTC"
	GoodTillTime      TimeInForce = "GTT"
	ImmediateOrCancel TimeInForce = "IOC"
	FillOrKill        TimeInForce = "FOK"
)

var clientOIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

//
// SpotOrder is a high-frequency spot order. Build one with NewSpotOrder and the With* methods; each
// of them returns a modified copy and leaves the receiver untouched.
//
type SpotOrder struct {
	ClientOrderID string           `json:"clientOid,omitempty"`
	Symbol        string           `json:"symbol"`
	Side          Side             `json:"side"`
	Type          OrderType        `json:"type"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Size          *decimal.Decimal `json:"size,omitempty"`
	Funds         *decimal.Decimal `json:"funds,omitempty"`
	TimeInForce   TimeInForce      `json:"timeInForce,omitempty"`
	CancelAfter   *int64           `json:"cancelAfter,omitempty"`
	PostOnly      *bool            `json:"postOnly,omitempty"`
	Hidden        *bool            `json:"hidden,omitempty"`
	Iceberg       *bool            `json:"iceberg,omitempty"`
	VisibleSize   *decimal.Decimal `json:"visibleSize,omitempty"`
	Remark        string           `json:"remark,omitempty"`
	Tags          string           `json:"tags,omitempty"`
	STP           STP              `json:"stp,omitempty"`

	ClientTimestamp    *int64 `json:"clientTimestamp,omitempty"`
	AllowMaxTimeWindow *int64 `json:"allowMaxTimeWindow,omitempty"`
}

// NewSpotOrder creates an order with a random client order id.
func NewSpotOrder(orderType OrderType, symbol string, side Side) SpotOrder {
	return SpotOrder{
		ClientOrderID: uuid.Must(uuid.NewV4()).String(),
		Symbol:        symbol,
		Side:          side,
		Type:          orderType,
	}
}

func (o SpotOrder) WithClientOrderID(id string) SpotOrder {
	o.ClientOrderID = id
	return o
}

func (o SpotOrder) WithSize(size decimal.Decimal) SpotOrder {
	o.Size = &size
	return o
}

func (o SpotOrder) WithPrice(price decimal.Decimal) SpotOrder {
	o.Price = &price
	return o
}

// WithFunds sets the quote-currency amount of a market order.
func (o SpotOrder) WithFunds(funds decimal.Decimal) SpotOrder {
	o.Funds = &funds
	return o
}

func (o SpotOrder) WithTimeInForce(tif TimeInForce) SpotOrder {
	o.TimeInForce = tif
	return o
}

// WithCancelAfter sets the GTT lifetime in seconds.
func (o SpotOrder) WithCancelAfter(seconds int64) SpotOrder {
	o.CancelAfter = &seconds
	return o
}

func (o SpotOrder) WithPostOnly(postOnly bool) SpotOrder {
	o.PostOnly = &postOnly
	return o
}

func (o SpotOrder) WithHidden(hidden bool) SpotOrder {
	o.Hidden = &hidden
	return o
}

func (o SpotOrder) WithIceberg(iceberg bool) SpotOrder {
	o.Iceberg = &iceberg
	return o
}

func (o SpotOrder) WithVisibleSize(size decimal.Decimal) SpotOrder {
	o.VisibleSize = &size
	return o
}

func (o SpotOrder) WithRemark(remark string) SpotOrder {
	o.Remark = remark
	return o
}

func (o SpotOrder) WithTags(tags string) SpotOrder {
	o.Tags = tags
	return o
}

func (o SpotOrder) WithSTP(stp STP) SpotOrder {
	o.STP = stp
	return o
}

//
// WithClientTimestamp stamps the order with the time it was created on the caller's side. The
// exchange rejects it once more than the allowed time window has passed.
//
func (o SpotOrder) WithClientTimestamp(t time.Time) SpotOrder {
	ms := t.UnixMilli()
	o.ClientTimestamp = &ms
	return o
}

// WithAllowMaxTimeWindow sets how many milliseconds after its client timestamp the order is valid.
func (o SpotOrder) WithAllowMaxTimeWindow(ms int64) SpotOrder {
	o.AllowMaxTimeWindow = &ms
	return o
}

//
// Validate checks the order against the exchange's placement rules so that a malformed order is
// never signed or sent.
//
func (o SpotOrder) Validate() error {
	if o.Symbol == "" {
		return exchange.NewValidationError("symbol", "is required")
	}

	if o.Side != Buy && o.Side != Sell {
		return exchange.NewValidationError("side", fmt.Sprintf("unknown side %q", o.Side))
	}

	if len(o.ClientOrderID) > MaxClientOIDLength {
		return exchange.NewValidationError("clientOid", fmt.Sprintf("longer than %d characters", MaxClientOIDLength))
	}

	if o.ClientOrderID != "" && !clientOIDPattern.MatchString(o.ClientOrderID) {
		return exchange.NewValidationError("clientOid", "may only contain letters, numbers, underscores and hyphens")
	}

	if len(o.Remark) > MaxRemarkLength {
		return exchange.NewValidationError("remark", fmt.Sprintf("longer than %d characters", MaxRemarkLength))
	}

	if len(o.Tags) > MaxTagsLength {
		return exchange.NewValidationError("tags", fmt.Sprintf("longer than %d characters", MaxTagsLength))
	}

	for _, amount := range []struct {
		name  string
		value *decimal.Decimal
	}{
		{"price", o.Price},
		{"size", o.Size},
		{"funds", o.Funds},
		{"visibleSize", o.VisibleSize},
	} {
		if amount.value != nil && !amount.value.IsPositive() {
			return exchange.NewValidationError(amount.name, "must be positive")
		}
	}

	switch o.Type {
	case Limit:
		if o.Price == nil || o.Size == nil {
			return exchange.NewValidationError("type", "limit orders need both price and size")
		}

		if o.Funds != nil {
			return exchange.NewValidationError("funds", "only applies to market orders")
		}
	case Market:
		if (o.Size == nil) == (o.Funds == nil) {
			return exchange.NewValidationError("type", "market orders need exactly one of size or funds")
		}

		if o.TimeInForce != "" {
			return exchange.NewValidationError("timeInForce", "not supported for market orders")
		}
	default:
		return exchange.NewValidationError("type", fmt.Sprintf("unknown order type %q", o.Type))
	}

	if o.CancelAfter != nil && o.TimeInForce != GoodTillTime {
		return exchange.NewValidationError("cancelAfter", "requires the GTT time in force")
	}

	if o.PostOnly != nil && *o.PostOnly && (o.TimeInForce == ImmediateOrCancel || o.TimeInForce == FillOrKill) {
		return exchange.NewValidationError("postOnly", "cannot be combined with IOC or FOK")
	}

	if o.VisibleSize != nil && (o.Iceberg == nil || !*o.Iceberg) {
		return exchange.NewValidationError("visibleSize", "only applies to iceberg orders")
	}

	if (o.ClientTimestamp == nil) != (o.AllowMaxTimeWindow == nil) {
		return exchange.NewValidationError("allowMaxTimeWindow", "must be set together with clientTimestamp")
	}

	if o.AllowMaxTimeWindow != nil && *o.AllowMaxTimeWindow <= 0 {
		return exchange.NewValidationError("allowMaxTimeWindow", "must be positive")
	}

	return nil
}

type OrderResult struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOid"`
}

func (o *Client) PlaceOrder(ctx context.Context, order SpotOrder) (*Response[OrderResult], error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	return Do[OrderResult](ctx, o, http.MethodPost, HFOrdersPath, order)
}

//
// BatchOrders is an immutable list of orders placed with one request.
//
type BatchOrders struct {
	orders []SpotOrder
}

func NewBatchOrders() BatchOrders {
	return BatchOrders{}
}

// Add returns a new batch with order appended; the receiver's backing array is never shared.
func (o BatchOrders) Add(order SpotOrder) BatchOrders {
	orders := make([]SpotOrder, len(o.orders), len(o.orders)+1)
	copy(orders, o.orders)

	return BatchOrders{orders: append(orders, order)}
}

func (o BatchOrders) Len() int {
	return len(o.orders)
}

func (o BatchOrders) Validate() error {
	if len(o.orders) == 0 {
		return exchange.NewValidationError("orderList", "is empty")
	}

	if len(o.orders) > MaxBatchOrders {
		return exchange.NewValidationError("orderList", fmt.Sprintf("more than %d orders", MaxBatchOrders))
	}

	for i, order := range o.orders {
		if err := order.Validate(); err != nil {
			return exchange.NewValidationError(fmt.Sprintf("orderList[%d]", i), err.Error())
		}
	}

	return nil
}

func (o BatchOrders) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		OrderList []SpotOrder `json:"orderList"`
	}{
		OrderList: o.orders,
	})
}

type BatchOrderResult struct {
	OrderID       string `json:"orderId"`
	ClientOrderID string `json:"clientOid"`
	Success       bool   `json:"success"`
	FailMsg       string `json:"failMsg"`
}

func (o *Client) PlaceBatchOrders(ctx context.Context, batch BatchOrders) (*Response[[]BatchOrderResult], error) {
	if err := batch.Validate(); err != nil {
		return nil, err
	}

	return Do[[]BatchOrderResult](ctx, o, http.MethodPost, HFBatchOrdersPath, batch)
}

//
// SpotCancelRequest cancels part of an open order.
//
type SpotCancelRequest struct {
	OrderID    string
	Symbol     string
	CancelSize decimal.Decimal
}

func NewSpotCancelRequest(orderID string, symbol string, cancelSize decimal.Decimal) SpotCancelRequest {
	return SpotCancelRequest{
		OrderID:    orderID,
		Symbol:     symbol,
		CancelSize: cancelSize,
	}
}

func (o SpotCancelRequest) Validate() error {
	switch {
	case o.OrderID == "":
		return exchange.NewValidationError("orderId", "is required")
	case o.Symbol == "":
		return exchange.NewValidationError("symbol", "is required")
	case !o.CancelSize.IsPositive():
		return exchange.NewValidationError("cancelSize", "must be positive")
	}

	return nil
}

func (o SpotCancelRequest) Path() string {
	query := url.Values{}
	query.Set("symbol", o.Symbol)
	query.Set("cancelSize", o.CancelSize.String())

	return fmt.Sprintf(HFCancelPartialPath, url.PathEscape(o.OrderID)) + "?" + query.Encode()
}

type CanceledOrder struct {
	OrderID    string          `json:"orderId"`
	CancelSize decimal.Decimal `json:"cancelSize"`
}

func (o *Client) CancelPartialOrder(ctx context.Context, req SpotCancelRequest) (*Response[CanceledOrder], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return Do[CanceledOrder](ctx, o, http.MethodDelete, req.Path(), nil)
}
