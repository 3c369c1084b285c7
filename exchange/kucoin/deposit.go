package kucoin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type DepositStatus string

const (
	DepositProcessing     DepositStatus = "PROCESSING"
	DepositSuccess        DepositStatus = "SUCCESS"
	DepositFailure        DepositStatus = "FAILURE"
	DepositWaitTRMMgt     DepositStatus = "WAIT_TRM_MGT"
	DepositTRMMgtRejected DepositStatus = "TRM_MGT_REJECTED"
)

//
// DepositQuery filters the deposit history. Unset filters are left out of the query string; with
// no status the exchange returns deposits in every status.
//
type DepositQuery struct {
	currency    string
	status      DepositStatus
	currentPage int64
	pageSize    int64
	startAt     time.Time
	endAt       time.Time
}

// NewDepositQuery starts a query for one currency (e.g. "BTC"); an empty currency means all.
func NewDepositQuery(currency string) DepositQuery {
	return DepositQuery{currency: currency}
}

func (o DepositQuery) WithStatus(status DepositStatus) DepositQuery {
	o.status = status
	return o
}

func (o DepositQuery) WithCurrentPage(page int64) DepositQuery {
	o.currentPage = page
	return o
}

// WithPageSize sets the page size; the exchange accepts 10 to 500.
func (o DepositQuery) WithPageSize(size int64) DepositQuery {
	o.pageSize = size
	return o
}

func (o DepositQuery) WithStartAt(t time.Time) DepositQuery {
	o.startAt = t
	return o
}

func (o DepositQuery) WithEndAt(t time.Time) DepositQuery {
	o.endAt = t
	return o
}

// Path renders the request path with its query string.
func (o DepositQuery) Path() string {
	query := url.Values{}

	if o.currency != "" {
		query.Set("currency", o.currency)
	}

	if o.status != "" {
		query.Set("status", string(o.status))
	}

	if o.currentPage > 0 {
		query.Set("currentPage", strconv.FormatInt(o.currentPage, 10))
	}

	if o.pageSize > 0 {
		query.Set("pageSize", strconv.FormatInt(o.pageSize, 10))
	}

	if !o.startAt.IsZero() {
		query.Set("startAt", strconv.FormatInt(o.startAt.UnixMilli(), 10))
	}

	if !o.endAt.IsZero() {
		query.Set("endAt", strconv.FormatInt(o.endAt.UnixMilli(), 10))
	}

	if len(query) == 0 {
		return DepositsPath
	}

	return DepositsPath + "?" + query.Encode()
}

type DepositList struct {
	CurrentPage int64     `json:"currentPage"`
	PageSize    int64     `json:"pageSize"`
	TotalNum    int64     `json:"totalNum"`
	TotalPage   int64     `json:"totalPage"`
	Items       []Deposit `json:"items"`
}

type Deposit struct {
	Currency   string          `json:"currency"`
	Chain      string          `json:"chain"`
	Status     DepositStatus   `json:"status"`
	Address    string          `json:"address"`
	Memo       string          `json:"memo"`
	IsInner    bool            `json:"isInner"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	WalletTxID string          `json:"walletTxId"`
	CreatedAt  int64           `json:"createdAt"`
	UpdatedAt  int64           `json:"updatedAt"`
	Remark     string          `json:"remark"`

	// Arrears is set when a quick rollback failed the deposit and the balance must be repaid.
	Arrears bool `json:"arrears"`
}

func (o Deposit) CreatedTime() time.Time {
	return time.UnixMilli(o.CreatedAt)
}

func (o Deposit) UpdatedTime() time.Time {
	return time.UnixMilli(o.UpdatedAt)
}

func (o *Client) GetDepositHistory(ctx context.Context, query DepositQuery) (*Response[DepositList], error) {
	return Do[DepositList](ctx, o, http.MethodGet, query.Path(), nil)
}

//
// FindDeposit looks up a deposit by its wallet transaction hash in the first page of the history
// across all currencies. It returns nil, nil when there is no match.
//
func (o *Client) FindDeposit(ctx context.Context, txID string) (*Deposit, error) {
	resp, err := o.GetDepositHistory(ctx, NewDepositQuery(""))
	if err != nil {
		return nil, err
	}

	if err := resp.Err(); err != nil {
		return nil, err
	}

	if resp.Data == nil {
		return nil, nil
	}

	for i := range resp.Data.Items {
		if resp.Data.Items[i].WalletTxID == txID {
			deposit := resp.Data.Items[i]
			return &deposit, nil
		}
	}

	return nil, nil
}
