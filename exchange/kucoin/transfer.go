package kucoin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	"github.com/lukehollenback/kucoin/exchange"
	"github.com/shopspring/decimal"
)

type AccountType string

const (
	MainAccount       AccountType = "MAIN"
	TradeAccount      AccountType = "TRADE"
	ContractAccount   AccountType = "CONTRACT"
	MarginAccount     AccountType = "MARGIN"
	IsolatedAccount   AccountType = "ISOLATED"
	MarginV2Account   AccountType = "MARGIN_V2"
	IsolatedV2Account AccountType = "ISOLATED_V2"
)

// Isolated reports whether the account is an isolated margin account, which needs a symbol tag.
func (o AccountType) Isolated() bool {
	return o == IsolatedAccount || o == IsolatedV2Account
}

type TransferType string

const (
	InternalTransfer    TransferType = "INTERNAL"
	ParentToSubTransfer TransferType = "PARENT_TO_SUB"
	SubToParentTransfer TransferType = "SUB_TO_PARENT"
)

//
// TransferRequest moves funds between accounts through the universal transfer endpoint.
//
type TransferRequest struct {
	ClientOrderID   string          `json:"clientOid"`
	Currency        string          `json:"currency"`
	Amount          decimal.Decimal `json:"amount"`
	Type            TransferType    `json:"type"`
	FromAccountType AccountType     `json:"fromAccountType"`
	FromAccountTag  string          `json:"fromAccountTag,omitempty"`
	FromUserID      string          `json:"fromUserId,omitempty"`
	ToAccountType   AccountType     `json:"toAccountType"`
	ToAccountTag    string          `json:"toAccountTag,omitempty"`
	ToUserID        string          `json:"toUserId,omitempty"`
}

func NewTransferRequest(currency string, amount decimal.Decimal, from AccountType, to AccountType, transferType TransferType) TransferRequest {
	return TransferRequest{
		ClientOrderID:   uuid.Must(uuid.NewV4()).String(),
		Currency:        currency,
		Amount:          amount,
		Type:            transferType,
		FromAccountType: from,
		ToAccountType:   to,
	}
}

// WithFromAccountTag sets the source symbol (e.g. "BTC-USDT") for isolated margin accounts.
func (o TransferRequest) WithFromAccountTag(symbol string) TransferRequest {
	o.FromAccountTag = symbol
	return o
}

// WithToAccountTag sets the destination symbol for isolated margin accounts.
func (o TransferRequest) WithToAccountTag(symbol string) TransferRequest {
	o.ToAccountTag = symbol
	return o
}

// WithFromUserID is required when transferring from a sub-account to the master account.
func (o TransferRequest) WithFromUserID(id string) TransferRequest {
	o.FromUserID = id
	return o
}

// WithToUserID is required when transferring from the master account to a sub-account.
func (o TransferRequest) WithToUserID(id string) TransferRequest {
	o.ToUserID = id
	return o
}

func (o TransferRequest) Validate() error {
	if o.Currency == "" {
		return exchange.NewValidationError("currency", "is required")
	}

	if !o.Amount.IsPositive() {
		return exchange.NewValidationError("amount", "must be positive")
	}

	if o.FromAccountType.Isolated() && o.FromAccountTag == "" {
		return exchange.NewValidationError("fromAccountTag", fmt.Sprintf("account tag is required for Sender %s account", o.FromAccountType))
	}

	if o.ToAccountType.Isolated() && o.ToAccountTag == "" {
		return exchange.NewValidationError("toAccountTag", fmt.Sprintf("account tag is required for Receiver %s account", o.ToAccountType))
	}

	switch o.Type {
	case InternalTransfer:
	case ParentToSubTransfer:
		if o.ToUserID == "" {
			return exchange.NewValidationError("toUserId", "is required for PARENT_TO_SUB transfers")
		}
	case SubToParentTransfer:
		if o.FromUserID == "" {
			return exchange.NewValidationError("fromUserId", "is required for SUB_TO_PARENT transfers")
		}
	default:
		return exchange.NewValidationError("type", fmt.Sprintf("unknown transfer type %q", o.Type))
	}

	return nil
}

type TransferResult struct {
	OrderID string `json:"orderId"`
}

func (o *Client) Transfer(ctx context.Context, req TransferRequest) (*Response[TransferResult], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return Do[TransferResult](ctx, o, http.MethodPost, UniversalTransferPath, req)
}
