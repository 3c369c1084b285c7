package kucoin

//
// Endpoint paths. Paths with a %s verb take a path-escaped identifier.
//
const (
	DepositsPath          = "/api/v1/deposits"
	HFOrdersPath          = "/api/v1/hf/orders"
	HFBatchOrdersPath     = "/api/v1/hf/orders/multi"
	HFCancelPartialPath   = "/api/v1/hf/orders/cancel/%s"
	UniversalTransferPath = "/api/v3/accounts/universal-transfer"
	SubAPIKeyPath         = "/api/v1/sub/api-key"
	SubAccountsPath       = "/api/v2/sub/user"
	SubAccountBalancePath = "/api/v1/sub-accounts/%s"
	WithdrawalsPath       = "/api/v3/withdrawals"
	BulletPrivatePath     = "/api/v1/bullet-private"
)

const (
	MaxBatchOrders     = 5
	MaxClientOIDLength = 40
	MaxRemarkLength    = 20
	MaxTagsLength      = 20
)
