package httpinterface

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/application/marketmaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

// Amounts travel as decimal strings, addresses as 0x-prefixed hex strings.

type CollateralRequest struct {
	Collateral     string `json:"collateral"`
	VirtualSupply  string `json:"virtual_supply"`
	VirtualBalance string `json:"virtual_balance"`
	ReserveRatio   uint32 `json:"reserve_ratio"`
}

type BeneficiaryRequest struct {
	Beneficiary string `json:"beneficiary"`
}

type FormulaRequest struct {
	Formula string `json:"formula"`
}

type FeesRequest struct {
	BuyFeePct  string `json:"buy_fee_pct"`
	SellFeePct string `json:"sell_fee_pct"`
}

// BuyOrderRequest mints to Buyer, the caller if empty.
type BuyOrderRequest struct {
	Buyer           string `json:"buyer,omitempty"`
	Collateral      string `json:"collateral"`
	DepositAmount   string `json:"deposit_amount"`
	MinReturnAmount string `json:"min_return_amount,omitempty"`
	Value           string `json:"value,omitempty"`
}

// SellOrderRequest burns the tokens of Seller, the caller if empty.
type SellOrderRequest struct {
	Seller          string `json:"seller,omitempty"`
	Collateral      string `json:"collateral"`
	Amount          string `json:"amount"`
	MinReturnAmount string `json:"min_return_amount,omitempty"`
}

// ApproveAndCallRequest approves Amount of Token to the market maker and
// calls it back with Data, the hex encoded buy order.
type ApproveAndCallRequest struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
	Data   string `json:"data"`
}

type FaucetRequest struct {
	Asset  string `json:"asset"`
	Amount string `json:"amount"`
}

type WebhookRequest struct {
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

type PermissionRequest struct {
	Account string `json:"account"`
	Entity  string `json:"entity"`
	Action  string `json:"action"`
}

type TokenRequest struct {
	Account    string `json:"account"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

type InfoResponse struct {
	Token        string `json:"token"`
	TokenManager string `json:"token_manager"`
	Formula      string `json:"formula"`
	Reserve      string `json:"reserve"`
	Beneficiary  string `json:"beneficiary"`
	BuyFeePct    string `json:"buy_fee_pct"`
	SellFeePct   string `json:"sell_fee_pct"`
	Gated        bool   `json:"gated"`
	IsOpen       bool   `json:"is_open"`
}

type CollateralResponse struct {
	Collateral     string `json:"collateral"`
	Whitelisted    bool   `json:"whitelisted"`
	VirtualSupply  string `json:"virtual_supply"`
	VirtualBalance string `json:"virtual_balance"`
	ReserveRatio   uint32 `json:"reserve_ratio"`
}

type OrderResponse struct {
	Trader       string `json:"trader"`
	Collateral   string `json:"collateral"`
	Amount       string `json:"amount"`
	Fee          string `json:"fee"`
	NetAmount    string `json:"net_amount"`
	ReturnAmount string `json:"return_amount"`
	FeePct       string `json:"fee_pct"`
}

type PriceResponse struct {
	Collateral string `json:"collateral"`
	PricePPM   string `json:"price_ppm"`
}

type BalanceResponse struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Balance string `json:"balance"`
}

type IDResponse struct {
	ID string `json:"id"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type PermissionResponse struct {
	Entity string `json:"entity"`
	Action string `json:"action"`
}

func infoResponse(info *marketmaker.Info) InfoResponse {
	return InfoResponse{
		Token:        info.Token.Hex(),
		TokenManager: info.TokenManager.Hex(),
		Formula:      info.Formula.Hex(),
		Reserve:      info.Reserve.Hex(),
		Beneficiary:  info.Beneficiary.Hex(),
		BuyFeePct:    info.BuyFeePct.Dec(),
		SellFeePct:   info.SellFeePct.Dec(),
		Gated:        info.Gated,
		IsOpen:       info.Open,
	}
}

func collateralResponse(c domain.CollateralToken) CollateralResponse {
	return CollateralResponse{
		Collateral:     c.Address.Hex(),
		Whitelisted:    c.Whitelisted,
		VirtualSupply:  decOrZero(c.VirtualSupply),
		VirtualBalance: decOrZero(c.VirtualBalance),
		ReserveRatio:   c.ReserveRatio,
	}
}

func orderResponse(r *marketmaker.OrderResult) OrderResponse {
	return OrderResponse{
		Trader:       r.Trader.Hex(),
		Collateral:   r.Collateral.Hex(),
		Amount:       decOrZero(r.Amount),
		Fee:          decOrZero(r.Fee),
		NetAmount:    decOrZero(r.NetAmount),
		ReturnAmount: decOrZero(r.ReturnAmount),
		FeePct:       decOrZero(r.FeePct),
	}
}

func decOrZero(n *uint256.Int) string {
	if n == nil {
		return "0"
	}
	return n.Dec()
}

func parseAddress(s, name string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: invalid %s", ErrInvalidRequest, name)
	}
	return common.HexToAddress(s), nil
}

// parseOptionalAddress returns def if s is empty.
func parseOptionalAddress(s, name string, def common.Address) (common.Address, error) {
	if len(s) <= 0 {
		return def, nil
	}
	return parseAddress(s, name)
}

func parseAmount(s, name string) (*uint256.Int, error) {
	n, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s: %s", ErrInvalidRequest, name, err)
	}
	return n, nil
}

// parseOptionalAmount returns nil if s is empty.
func parseOptionalAmount(s, name string) (*uint256.Int, error) {
	if len(s) <= 0 {
		return nil, nil
	}
	return parseAmount(s, name)
}

func parseHex(s, name string) ([]byte, error) {
	buf, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s", ErrInvalidRequest, name)
	}
	return buf, nil
}

func (r CollateralRequest) parse(collateral string) (marketmaker.CollateralArgs, error) {
	if len(collateral) <= 0 {
		collateral = r.Collateral
	}
	address, err := parseAddress(collateral, "collateral")
	if err != nil {
		return marketmaker.CollateralArgs{}, err
	}
	virtualSupply, err := parseOptionalAmount(r.VirtualSupply, "virtual supply")
	if err != nil {
		return marketmaker.CollateralArgs{}, err
	}
	virtualBalance, err := parseOptionalAmount(r.VirtualBalance, "virtual balance")
	if err != nil {
		return marketmaker.CollateralArgs{}, err
	}
	return marketmaker.CollateralArgs{
		Collateral:     address,
		VirtualSupply:  virtualSupply,
		VirtualBalance: virtualBalance,
		ReserveRatio:   r.ReserveRatio,
	}, nil
}

func (r BuyOrderRequest) parse(caller common.Address) (marketmaker.BuyOrder, error) {
	buyer, err := parseOptionalAddress(r.Buyer, "buyer", caller)
	if err != nil {
		return marketmaker.BuyOrder{}, err
	}
	collateral, err := parseAddress(r.Collateral, "collateral")
	if err != nil {
		return marketmaker.BuyOrder{}, err
	}
	deposit, err := parseAmount(r.DepositAmount, "deposit amount")
	if err != nil {
		return marketmaker.BuyOrder{}, err
	}
	minReturn, err := parseOptionalAmount(r.MinReturnAmount, "min return amount")
	if err != nil {
		return marketmaker.BuyOrder{}, err
	}
	value, err := parseOptionalAmount(r.Value, "value")
	if err != nil {
		return marketmaker.BuyOrder{}, err
	}
	return marketmaker.BuyOrder{
		Caller:          caller,
		Buyer:           buyer,
		Collateral:      collateral,
		DepositAmount:   deposit,
		MinReturnAmount: minReturn,
		Value:           value,
	}, nil
}

func (r SellOrderRequest) parse(caller common.Address) (marketmaker.SellOrder, error) {
	seller, err := parseOptionalAddress(r.Seller, "seller", caller)
	if err != nil {
		return marketmaker.SellOrder{}, err
	}
	collateral, err := parseAddress(r.Collateral, "collateral")
	if err != nil {
		return marketmaker.SellOrder{}, err
	}
	amount, err := parseAmount(r.Amount, "amount")
	if err != nil {
		return marketmaker.SellOrder{}, err
	}
	minReturn, err := parseOptionalAmount(r.MinReturnAmount, "min return amount")
	if err != nil {
		return marketmaker.SellOrder{}, err
	}
	return marketmaker.SellOrder{
		Caller:          caller,
		Seller:          seller,
		Collateral:      collateral,
		Amount:          amount,
		MinReturnAmount: minReturn,
	}, nil
}

func (r ApproveAndCallRequest) parse(caller common.Address) (marketmaker.Approval, error) {
	token, err := parseAddress(r.Token, "token")
	if err != nil {
		return marketmaker.Approval{}, err
	}
	amount, err := parseAmount(r.Amount, "amount")
	if err != nil {
		return marketmaker.Approval{}, err
	}
	data, err := parseHex(r.Data, "data")
	if err != nil {
		return marketmaker.Approval{}, err
	}
	return marketmaker.Approval{
		Token:  token,
		From:   caller,
		Amount: amount,
		Data:   data,
	}, nil
}
