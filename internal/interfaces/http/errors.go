package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/acl"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/chain"
	pubsubinfra "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/pubsub"
)

var (
	// ErrInvalidRequest is returned for malformed requests.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthenticated is returned for requests that need a caller
	// identity but carry no valid bearer token.
	ErrUnauthenticated = errors.New("missing or invalid bearer token")
	// ErrNotFound ...
	ErrNotFound = errors.New("not found")
)

// Error is the body of every failed response. Code is a stable reason
// clients can branch on.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorCode struct {
	err    error
	code   string
	status int
}

// errorCodes is matched in order with errors.Is.
var errorCodes = []errorCode{
	{domain.ErrNotInitialized, "MM_NOT_INITIALIZED", http.StatusConflict},
	{domain.ErrAlreadyInitialized, "MM_ALREADY_INITIALIZED", http.StatusConflict},
	{domain.ErrContractIsEOA, "MM_CONTRACT_IS_EOA", http.StatusBadRequest},
	{domain.ErrInvalidTokenManagerSetting, "MM_INVALID_TM_SETTING", http.StatusBadRequest},
	{domain.ErrNotOpen, "MM_NOT_OPEN", http.StatusConflict},
	{domain.ErrAlreadyOpen, "MM_ALREADY_OPEN", http.StatusConflict},
	{domain.ErrAuthFailed, "APP_AUTH_FAILED", http.StatusForbidden},
	{domain.ErrNoPermission, "MM_NO_PERMISSION", http.StatusForbidden},
	{domain.ErrCollateralNotWhitelisted, "MM_COLLATERAL_NOT_WHITELISTED", http.StatusBadRequest},
	{domain.ErrAlreadyWhitelisted, "MM_COLLATERAL_ALREADY_WHITELISTED", http.StatusConflict},
	{domain.ErrNotWhitelisted, "MM_COLLATERAL_NOT_WHITELISTED", http.StatusBadRequest},
	{domain.ErrInvalidReserveRatio, "MM_INVALID_RESERVE_RATIO", http.StatusBadRequest},
	{domain.ErrNotAContract, "MM_ADDRESS_NOT_CONTRACT", http.StatusBadRequest},
	{domain.ErrInvalidBeneficiary, "MM_INVALID_BENEFICIARY", http.StatusBadRequest},
	{domain.ErrInvalidPercentage, "MM_INVALID_PERCENTAGE", http.StatusBadRequest},
	{domain.ErrInvalidCollateralValue, "MM_INVALID_COLLATERAL_VALUE", http.StatusBadRequest},
	{domain.ErrInvalidBondAmount, "MM_INVALID_BOND_AMOUNT", http.StatusBadRequest},
	{domain.ErrSlippageExceedsLimit, "MM_SLIPPAGE_EXCEEDS_LIMIT", http.StatusConflict},
	{domain.ErrReserveTransferFailed, "MM_TRANSFER_FROM_RESERVE_FAILED", http.StatusInternalServerError},
	{domain.ErrMathOverflow, "MATH_OVERFLOW", http.StatusUnprocessableEntity},
	{domain.ErrNotBuyFunction, "MM_NOT_BUY_FUNCTION", http.StatusBadRequest},
	{domain.ErrBuyerNotFrom, "MM_BUYER_NOT_FROM", http.StatusBadRequest},
	{domain.ErrCollateralNotSender, "MM_COLLATERAL_NOT_SENDER", http.StatusBadRequest},
	{domain.ErrDepositNotAmount, "MM_DEPOSIT_NOT_AMOUNT", http.StatusBadRequest},
	{marketmaker.ErrUndefinedPrice, "MM_UNDEFINED_PRICE", http.StatusUnprocessableEntity},
	{pubsub.ErrInvalidEvent, "WEBHOOK_INVALID_EVENT", http.StatusBadRequest},
	{pubsubinfra.ErrSubscriptionNotFound, "WEBHOOK_NOT_FOUND", http.StatusNotFound},
	{acl.ErrInvalidPermission, "ACL_INVALID_PERMISSION", http.StatusBadRequest},
	{chain.ErrInsufficientBalance, "LEDGER_INSUFFICIENT_BALANCE", http.StatusConflict},
	{chain.ErrMaxAccountTokens, "LEDGER_MAX_ACCOUNT_TOKENS", http.StatusConflict},
	{chain.ErrUnknownAsset, "LEDGER_UNKNOWN_ASSET", http.StatusBadRequest},
	{chain.ErrFaucetDenied, "FAUCET_DENIED", http.StatusBadRequest},
	{chain.ErrFaucetLimit, "FAUCET_LIMIT", http.StatusBadRequest},
	{ErrInvalidRequest, "INVALID_REQUEST", http.StatusBadRequest},
	{ErrUnauthenticated, "UNAUTHENTICATED", http.StatusUnauthorized},
	{ErrNotFound, "NOT_FOUND", http.StatusNotFound},
}

func toError(err error) (int, Error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.status, Error{e.code, err.Error()}
		}
	}
	return http.StatusInternalServerError, Error{"INTERNAL", err.Error()}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := toError(err)
	if status >= http.StatusInternalServerError {
		log.WithError(err).Warnf("http: %s %s failed", r.Method, r.URL.Path)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.WithError(err).Warn("http: failed to write response")
	}
}
