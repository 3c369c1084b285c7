package kucoin

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/lukehollenback/kucoin/exchange"
	"github.com/shopspring/decimal"
)

// Expire is the lifetime of a sub-account API key in days.
type Expire string

const (
	NeverExpire Expire = "-1"
	Expire30    Expire = "30"
	Expire90    Expire = "90"
	Expire180   Expire = "180"
	Expire360   Expire = "360"
)

const (
	MinSubPassphraseLength = 7
	MaxSubPassphraseLength = 32
	MaxSubRemarkLength     = 24
	MaxIPWhitelist         = 20
)

//
// SubAPIKeyRequest creates an API key on a sub-account. Its passphrase is kept in a Secret and only
// leaves the value when the request body is marshalled.
//
type SubAPIKeyRequest struct {
	subName     string
	remark      string
	passphrase  Secret
	expire      Expire
	ipWhitelist []string
	permission  string
}

func NewSubAPIKeyRequest(subName string, remark string, passphrase string) SubAPIKeyRequest {
	return SubAPIKeyRequest{
		subName:    subName,
		remark:     remark,
		passphrase: NewSecret(passphrase),
	}
}

func (o SubAPIKeyRequest) WithExpire(expire Expire) SubAPIKeyRequest {
	o.expire = expire
	return o
}

// WithIPWhitelist adds one IP to the whitelist; call it once per IP.
func (o SubAPIKeyRequest) WithIPWhitelist(ip string) SubAPIKeyRequest {
	ips := make([]string, len(o.ipWhitelist), len(o.ipWhitelist)+1)
	copy(ips, o.ipWhitelist)

	o.ipWhitelist = append(ips, ip)

	return o
}

//
// WithPermission sets the comma separated permission list (e.g. "General,Spot"). Only General,
// Spot, Futures, Margin, Unified and InnerTransfer can be granted.
//
func (o SubAPIKeyRequest) WithPermission(permission string) SubAPIKeyRequest {
	o.permission = permission
	return o
}

func (o SubAPIKeyRequest) SubName() string {
	return o.subName
}

// IPWhitelist returns the whitelist in the comma separated form the exchange expects.
func (o SubAPIKeyRequest) IPWhitelist() string {
	return strings.Join(o.ipWhitelist, ",")
}

func (o SubAPIKeyRequest) String() string {
	return fmt.Sprintf("kucoin.SubAPIKeyRequest{subName: %s, remark: %s, passphrase: %s}", o.subName, o.remark, redacted)
}

func (o SubAPIKeyRequest) Validate() error {
	if o.subName == "" {
		return exchange.NewValidationError("subName", "is required")
	}

	passphrase := o.passphrase.Reveal()
	if len(passphrase) < MinSubPassphraseLength || len(passphrase) > MaxSubPassphraseLength {
		return exchange.NewValidationError("passphrase", fmt.Sprintf("must be %d to %d characters", MinSubPassphraseLength, MaxSubPassphraseLength))
	}

	if strings.ContainsAny(passphrase, " \t\r\n") {
		return exchange.NewValidationError("passphrase", "cannot contain spaces")
	}

	if len(o.remark) == 0 || len(o.remark) > MaxSubRemarkLength {
		return exchange.NewValidationError("remark", fmt.Sprintf("must be 1 to %d characters", MaxSubRemarkLength))
	}

	if len(o.ipWhitelist) > MaxIPWhitelist {
		return exchange.NewValidationError("ipWhitelist", fmt.Sprintf("more than %d IPs", MaxIPWhitelist))
	}

	switch o.expire {
	case "", NeverExpire, Expire30, Expire90, Expire180, Expire360:
	default:
		return exchange.NewValidationError("expire", fmt.Sprintf("unknown expiry %q", o.expire))
	}

	return nil
}

func (o SubAPIKeyRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		SubName     string `json:"subName"`
		Remark      string `json:"remark"`
		Passphrase  string `json:"passphrase"`
		Expire      Expire `json:"expire,omitempty"`
		IPWhitelist string `json:"ipWhitelist,omitempty"`
		Permission  string `json:"permission,omitempty"`
	}{
		SubName:     o.subName,
		Remark:      o.remark,
		Passphrase:  o.passphrase.Reveal(),
		Expire:      o.expire,
		IPWhitelist: o.IPWhitelist(),
		Permission:  o.permission,
	})
}

type SubAPIKey struct {
	SubName     string `json:"subName"`
	Remark      string `json:"remark"`
	APIKey      string `json:"apiKey"`
	APISecret   Secret `json:"apiSecret"`
	Passphrase  Secret `json:"passphrase"`
	APIVersion  int64  `json:"apiVersion"`
	Permission  string `json:"permission"`
	IPWhitelist string `json:"ipWhitelist"`
	CreatedAt   int64  `json:"createdAt"`
}

// Credentials turns a freshly created sub-account key into credentials a client can sign with.
func (o *SubAPIKey) Credentials() *Credentials {
	return &Credentials{
		key:        NewSecret(o.APIKey),
		secret:     o.APISecret,
		passphrase: o.Passphrase,
	}
}

func (o *Client) CreateSubAPIKey(ctx context.Context, req SubAPIKeyRequest) (*Response[SubAPIKey], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	return Do[SubAPIKey](ctx, o, http.MethodPost, SubAPIKeyPath, req)
}

type SubAccountList struct {
	CurrentPage int64        `json:"currentPage"`
	PageSize    int64        `json:"pageSize"`
	TotalNum    int64        `json:"totalNum"`
	TotalPage   int64        `json:"totalPage"`
	Items       []SubAccount `json:"items"`
}

type SubAccount struct {
	UserID    string `json:"userId"`
	UID       int64  `json:"uid"`
	SubName   string `json:"subName"`
	Status    int64  `json:"status"`
	Type      int64  `json:"type"`
	Access    string `json:"access"`
	CreatedAt int64  `json:"createdAt"`
	Remarks   string `json:"remarks"`
}

// ListSubAccounts returns the first page of sub-account summaries.
func (o *Client) ListSubAccounts(ctx context.Context) (*Response[SubAccountList], error) {
	return Do[SubAccountList](ctx, o, http.MethodGet, SubAccountsPath, nil)
}

type SubAccountBalance struct {
	SubUserID      string           `json:"subUserId"`
	SubName        string           `json:"subName"`
	MainAccounts   []AccountBalance `json:"mainAccounts"`
	TradeAccounts  []AccountBalance `json:"tradeAccounts"`
	MarginAccounts []AccountBalance `json:"marginAccounts"`
}

type AccountBalance struct {
	Currency          string          `json:"currency"`
	Balance           decimal.Decimal `json:"balance"`
	Available         decimal.Decimal `json:"available"`
	Holds             decimal.Decimal `json:"holds"`
	BaseCurrency      string          `json:"baseCurrency"`
	BaseCurrencyPrice decimal.Decimal `json:"baseCurrencyPrice"`
	BaseAmount        decimal.Decimal `json:"baseAmount"`
}

func (o *Client) SubAccountBalance(ctx context.Context, subUserID string) (*Response[SubAccountBalance], error) {
	if subUserID == "" {
		return nil, exchange.NewValidationError("subUserId", "is required")
	}

	return Do[SubAccountBalance](ctx, o, http.MethodGet, fmt.Sprintf(SubAccountBalancePath, url.PathEscape(subUserID)), nil)
}
