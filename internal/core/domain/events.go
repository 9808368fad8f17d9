package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventType identifies the kind of a market maker event.
type EventType string

const (
	EventAddCollateralToken    EventType = "AddCollateralToken"
	EventRemoveCollateralToken EventType = "RemoveCollateralToken"
	EventUpdateCollateralToken EventType = "UpdateCollateralToken"
	EventUpdateBeneficiary     EventType = "UpdateBeneficiary"
	EventUpdateFormula         EventType = "UpdateFormula"
	EventUpdateFees            EventType = "UpdateFees"
	EventOpen                  EventType = "Open"
	EventMakeBuyOrder          EventType = "MakeBuyOrder"
	EventMakeSellOrder         EventType = "MakeSellOrder"
)

// Event is a state change of the market maker, emitted only once the change
// is committed.
type Event interface {
	Type() EventType
}

// EventTypes returns every event type, in declaration order.
func EventTypes() []EventType {
	return []EventType{
		EventAddCollateralToken,
		EventRemoveCollateralToken,
		EventUpdateCollateralToken,
		EventUpdateBeneficiary,
		EventUpdateFormula,
		EventUpdateFees,
		EventOpen,
		EventMakeBuyOrder,
		EventMakeSellOrder,
	}
}

type AddCollateralTokenEvent struct {
	Collateral     common.Address `json:"collateral"`
	VirtualSupply  *uint256.Int   `json:"virtual_supply"`
	VirtualBalance *uint256.Int   `json:"virtual_balance"`
	ReserveRatio   uint32         `json:"reserve_ratio"`
}

func (AddCollateralTokenEvent) Type() EventType { return EventAddCollateralToken }

type RemoveCollateralTokenEvent struct {
	Collateral common.Address `json:"collateral"`
}

func (RemoveCollateralTokenEvent) Type() EventType { return EventRemoveCollateralToken }

type UpdateCollateralTokenEvent struct {
	Collateral     common.Address `json:"collateral"`
	VirtualSupply  *uint256.Int   `json:"virtual_supply"`
	VirtualBalance *uint256.Int   `json:"virtual_balance"`
	ReserveRatio   uint32         `json:"reserve_ratio"`
}

func (UpdateCollateralTokenEvent) Type() EventType { return EventUpdateCollateralToken }

type UpdateBeneficiaryEvent struct {
	Beneficiary common.Address `json:"beneficiary"`
}

func (UpdateBeneficiaryEvent) Type() EventType { return EventUpdateBeneficiary }

type UpdateFormulaEvent struct {
	Formula common.Address `json:"formula"`
}

func (UpdateFormulaEvent) Type() EventType { return EventUpdateFormula }

type UpdateFeesEvent struct {
	BuyFeePct  *uint256.Int `json:"buy_fee_pct"`
	SellFeePct *uint256.Int `json:"sell_fee_pct"`
}

func (UpdateFeesEvent) Type() EventType { return EventUpdateFees }

type OpenEvent struct{}

func (OpenEvent) Type() EventType { return EventOpen }

// MakeBuyOrderEvent reports an executed buy order. Fee and ReturnAmount are
// what the beneficiary and the buyer received.
type MakeBuyOrderEvent struct {
	Buyer         common.Address `json:"buyer"`
	Collateral    common.Address `json:"collateral"`
	DepositAmount *uint256.Int   `json:"deposit_amount"`
	Fee           *uint256.Int   `json:"fee"`
	ReturnAmount  *uint256.Int   `json:"return_amount"`
	FeePct        *uint256.Int   `json:"fee_pct"`
}

func (MakeBuyOrderEvent) Type() EventType { return EventMakeBuyOrder }

// MakeSellOrderEvent reports an executed sell order. ReturnAmount is the
// collateral paid out to the seller net of Fee.
type MakeSellOrderEvent struct {
	Seller       common.Address `json:"seller"`
	Collateral   common.Address `json:"collateral"`
	SellAmount   *uint256.Int   `json:"sell_amount"`
	Fee          *uint256.Int   `json:"fee"`
	ReturnAmount *uint256.Int   `json:"return_amount"`
	FeePct       *uint256.Int   `json:"fee_pct"`
}

func (MakeSellOrderEvent) Type() EventType { return EventMakeSellOrder }
