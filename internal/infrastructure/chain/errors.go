package chain

import "errors"

var (
	// ErrInsufficientBalance ...
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrUnknownAsset is returned when moving an asset that is neither the
	// native one nor a deployed token.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrMaxAccountTokens is returned when a mint exceeds the max balance an
	// account can hold.
	ErrMaxAccountTokens = errors.New("account would exceed max token balance")
	// ErrContractNotFound ...
	ErrContractNotFound = errors.New("contract not found")
	// ErrWrongContractKind is returned when resolving a contract as something
	// it isn't.
	ErrWrongContractKind = errors.New("wrong contract kind")
	// ErrUnknownFormula ...
	ErrUnknownFormula = errors.New("unknown formula type")
	// ErrInvalidAmount ...
	ErrInvalidAmount = errors.New("amount must not be null")
)

var (
	// ErrFaucetDenied is returned when funding the bonded token, which can be
	// obtained only by buying it.
	ErrFaucetDenied = errors.New("asset can't be funded by the faucet")
	// ErrFaucetLimit is returned when requesting more than the faucet's cap
	// per request.
	ErrFaucetLimit = errors.New("amount exceeds faucet limit")
)
