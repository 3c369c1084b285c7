package kucoin

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lukehollenback/kucoin/exchange"
	"github.com/shopspring/decimal"
)

type WithdrawType string

const (
	WithdrawToAddress WithdrawType = "ADDRESS"
	WithdrawToUID     WithdrawType = "UID"
	WithdrawToMail    WithdrawType = "MAIL"
	WithdrawToPhone   WithdrawType = "PHONE"
)

//
// FeeDeductType picks where the withdrawal fee comes from. INTERNAL takes it out of the withdrawn
// amount, EXTERNAL out of the main account. Left unset, the exchange uses the main account when it
// can cover the fee.
//
type FeeDeductType string

const (
	FeeDeductInternal FeeDeductType = "INTERNAL"
	FeeDeductExternal FeeDeductType = "EXTERNAL"
)

type WithdrawRequest struct {
	Currency      string          `json:"currency"`
	ToAddress     string          `json:"toAddress"`
	Amount        decimal.Decimal `json:"amount"`
	WithdrawType  WithdrawType    `json:"withdrawType"`
	Chain         string          `json:"chain,omitempty"`
	Memo          string          `json:"memo,omitempty"`
	IsInner       *bool           `json:"isInner,omitempty"`
	Remark        string          `json:"remark,omitempty"`
	FeeDeductType FeeDeductType   `json:"feeDeductType,omitempty"`
}

func NewWithdrawRequest(currency string, toAddress string, amount decimal.Decimal, withdrawType WithdrawType) WithdrawRequest {
	return WithdrawRequest{
		Currency:     currency,
		ToAddress:    toAddress,
		Amount:       amount,
		WithdrawType: withdrawType,
	}
}

// WithChain picks the chain id for multi-chain currencies (e.g. "trx").
func (o WithdrawRequest) WithChain(chain string) WithdrawRequest {
	o.Chain = chain
	return o
}

func (o WithdrawRequest) WithMemo(memo string) WithdrawRequest {
	o.Memo = memo
	return o
}

func (o WithdrawRequest) WithInner(inner bool) WithdrawRequest {
	o.IsInner = &inner
	return o
}

func (o WithdrawRequest) WithRemark(remark string) WithdrawRequest {
	o.Remark = remark
	return o
}

func (o WithdrawRequest) WithFeeDeductType(feeDeductType FeeDeductType) WithdrawRequest {
	o.FeeDeductType = feeDeductType
	return o
}

func (o WithdrawRequest) Validate() error {
	switch {
	case o.Currency == "":
		return exchange.NewValidationError("currency", "is required")
	case o.ToAddress == "":
		return exchange.NewValidationError("toAddress", "is required")
	case !o.Amount.IsPositive():
		return exchange.NewValidationError("amount", "must be positive")
	}

	switch o.WithdrawType {
	case WithdrawToAddress, WithdrawToUID, WithdrawToMail, WithdrawToPhone:
	default:
		return exchange.NewValidationError("withdrawType", fmt.Sprintf("unknown withdraw type %q", o.WithdrawType))
	}

	switch o.FeeDeductType {
	case "", FeeDeductInternal, FeeDeductExternal:
	default:
		return exchange.NewValidationError("feeDeductType", fmt.Sprintf("unknown fee deduct type %q", o.FeeDeductType))
	}

	return nil
}

type WithdrawResult struct {
	WithdrawalID string `json:"withdrawalId"`
}

func (o *Client) Withdraw(ctx context.Context, req WithdrawRequest) (*Response[WithdrawResult], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return Do[WithdrawResult](ctx, o, http.MethodPost, WithdrawalsPath, req)
}
