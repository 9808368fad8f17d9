package domain

import (
	"errors"

	"github.com/tdex-network/tdex-bondingcurve/pkg/mathutil"
)

var (
	// ErrNotInitialized is returned by any operation performed before the
	// market maker has been initialized.
	ErrNotInitialized = errors.New("market maker is not initialized")
	// ErrAlreadyInitialized is returned when initializing twice.
	ErrAlreadyInitialized = errors.New("market maker is already initialized")
	// ErrContractIsEOA is returned when an initialization reference is not a
	// contract.
	ErrContractIsEOA = errors.New("reference is not a contract")
	// ErrInvalidTokenManagerSetting is returned when the token manager caps
	// the amount of tokens an account can hold.
	ErrInvalidTokenManagerSetting = errors.New(
		"token manager must not limit account balances",
	)

	// ErrNotOpen is returned for orders made before the market maker is open.
	ErrNotOpen = errors.New("market maker is not open")
	// ErrAlreadyOpen ...
	ErrAlreadyOpen = errors.New("market maker is already open")

	// ErrAuthFailed is returned when the caller lacks the required permission.
	ErrAuthFailed = errors.New("caller is not authorized")
	// ErrNoPermission is returned when the approving account of an
	// approve-and-call order lacks the buy permission.
	ErrNoPermission = errors.New("approving account has no permission to buy")

	// ErrCollateralNotWhitelisted ...
	ErrCollateralNotWhitelisted = errors.New("collateral is not whitelisted")
	// ErrAlreadyWhitelisted ...
	ErrAlreadyWhitelisted = errors.New("collateral is already whitelisted")
	// ErrNotWhitelisted is returned when updating or removing an unknown
	// collateral.
	ErrNotWhitelisted = errors.New("collateral token is not registered")
	// ErrInvalidReserveRatio ...
	ErrInvalidReserveRatio = errors.New(
		"reserve ratio must be in range (0, 1000000]",
	)
	// ErrNotAContract ...
	ErrNotAContract = errors.New("address is not a contract")
	// ErrInvalidBeneficiary ...
	ErrInvalidBeneficiary = errors.New("beneficiary must not be null")
	// ErrInvalidPercentage is returned for fees not lower than PctBase.
	ErrInvalidPercentage = errors.New("fee percentage must be lower than 100%")

	// ErrInvalidCollateralValue is returned when the deposit is zero or does
	// not match the value attached to the call.
	ErrInvalidCollateralValue = errors.New("invalid collateral value")
	// ErrInvalidBondAmount is returned when selling zero tokens or more tokens
	// than the seller holds.
	ErrInvalidBondAmount = errors.New("invalid bond amount")
	// ErrSlippageExceedsLimit is returned when the order would return less than
	// the requested minimum.
	ErrSlippageExceedsLimit = errors.New("order return is below min return amount")
	// ErrReserveTransferFailed is returned when the reserve can't pay out.
	ErrReserveTransferFailed = errors.New("reserve transfer failed")
	// ErrMathOverflow ...
	ErrMathOverflow = mathutil.ErrOverflow

	// ErrNotBuyFunction is returned when an approve-and-call payload does not
	// encode a buy order.
	ErrNotBuyFunction = errors.New("payload is not a buy order")
	// ErrBuyerNotFrom ...
	ErrBuyerNotFrom = errors.New("buyer must be the approving account")
	// ErrCollateralNotSender ...
	ErrCollateralNotSender = errors.New("collateral must be the calling token")
	// ErrDepositNotAmount ...
	ErrDepositNotAmount = errors.New("deposit amount must equal approved amount")
)
