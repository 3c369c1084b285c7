package kucoin

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/lukehollenback/kucoin/exchange"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransferRequestValidate(t *testing.T) {
	internal := NewTransferRequest("USDT", dec("10"), MainAccount, TradeAccount, InternalTransfer)
	assert.NoError(t, internal.Validate())
	assert.NotEmpty(t, internal.ClientOrderID)

	toSub := NewTransferRequest("USDT", dec("10"), MainAccount, MainAccount, ParentToSubTransfer)
	assert.Equal(t, "toUserId", invalidField(t, toSub.Validate()))
	assert.NoError(t, toSub.WithToUserID("sub-1").Validate())

	fromSub := NewTransferRequest("USDT", dec("10"), TradeAccount, MainAccount, SubToParentTransfer)
	assert.Equal(t, "fromUserId", invalidField(t, fromSub.Validate()))
	assert.NoError(t, fromSub.WithFromUserID("sub-1").Validate())

	assert.Equal(t, "amount", invalidField(t, NewTransferRequest("USDT", dec("0"), MainAccount, TradeAccount, InternalTransfer).Validate()))
	assert.Equal(t, "currency", invalidField(t, NewTransferRequest("", dec("1"), MainAccount, TradeAccount, InternalTransfer).Validate()))
	assert.Equal(t, "type", invalidField(t, NewTransferRequest("USDT", dec("1"), MainAccount, TradeAccount, TransferType("SIDEWAYS")).Validate()))
}

func TestTransferRequestIsolatedTags(t *testing.T) {
	fromIsolated := NewTransferRequest("USDT", dec("1"), IsolatedAccount, MainAccount, InternalTransfer)

	var validationErr *exchange.ValidationError
	require.True(t, errors.As(fromIsolated.Validate(), &validationErr))
	assert.Equal(t, "fromAccountTag", validationErr.Field)
	assert.Equal(t, "account tag is required for Sender ISOLATED account", validationErr.Reason)
	assert.NoError(t, fromIsolated.WithFromAccountTag("BTC-USDT").Validate())

	toIsolated := NewTransferRequest("USDT", dec("1"), MainAccount, IsolatedV2Account, InternalTransfer)
	require.True(t, errors.As(toIsolated.Validate(), &validationErr))
	assert.Equal(t, "toAccountTag", validationErr.Field)
	assert.Equal(t, "account tag is required for Receiver ISOLATED_V2 account", validationErr.Reason)
	assert.NoError(t, toIsolated.WithToAccountTag("BTC-USDT").Validate())
}

func TestTransfer(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000","data":{"orderId":"t-1"}}`)

	req := NewTransferRequest("USDT", dec("10"), MainAccount, IsolatedAccount, InternalTransfer).WithToAccountTag("BTC-USDT")
	req.ClientOrderID = "cid-1"

	resp, err := client.Transfer(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "t-1", resp.Data.OrderID)

	requests := seen.all()
	require.Len(t, requests, 1)
	assert.Equal(t, http.MethodPost, requests[0].method)
	assert.Equal(t, UniversalTransferPath, requests[0].uri)
	assert.JSONEq(t, `{
		"clientOid": "cid-1",
		"currency": "USDT",
		"amount": "10",
		"type": "INTERNAL",
		"fromAccountType": "MAIN",
		"toAccountType": "ISOLATED",
		"toAccountTag": "BTC-USDT"
	}`, requests[0].body)
}

func TestTransferInvalidSendsNothing(t *testing.T) {
	client, seen := newTestClient(t, http.StatusOK, `{"code":"200000"}`)

	_, err := client.Transfer(context.Background(), NewTransferRequest("USDT", dec("1"), MainAccount, MainAccount, ParentToSubTransfer))
	assert.Equal(t, "toUserId", invalidField(t, err))
	assert.Empty(t, seen.all())
}
