// Package mmabi encodes and decodes the calls of the market maker with the
// contract ABI, as used by the approve-and-call payloads.
package mmabi

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

const (
	MakeBuyOrderMethod  = "makeBuyOrder"
	MakeSellOrderMethod = "makeSellOrder"

	selectorLen = 4
)

const marketMakerABI = `[
	{
		"type": "function",
		"name": "makeBuyOrder",
		"stateMutability": "payable",
		"inputs": [
			{"name": "_buyer", "type": "address"},
			{"name": "_collateral", "type": "address"},
			{"name": "_depositAmount", "type": "uint256"},
			{"name": "_minReturnAmountAfterFee", "type": "uint256"}
		],
		"outputs": []
	},
	{
		"type": "function",
		"name": "makeSellOrder",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "_seller", "type": "address"},
			{"name": "_collateral", "type": "address"},
			{"name": "_sellAmount", "type": "uint256"},
			{"name": "_minReturnAmountAfterFee", "type": "uint256"}
		],
		"outputs": []
	}
]`

var (
	// ErrNotBuyOrder is returned when the payload selector is not the one of
	// makeBuyOrder.
	ErrNotBuyOrder = errors.New("payload does not call makeBuyOrder")
	// ErrMalformedPayload is returned when the arguments can't be decoded.
	ErrMalformedPayload = errors.New("malformed payload")

	parsedABI abi.ABI
)

func init() {
	var err error
	if parsedABI, err = abi.JSON(strings.NewReader(marketMakerABI)); err != nil {
		panic(fmt.Sprintf("mmabi: invalid abi: %s", err))
	}
}

// Order holds the arguments of a buy or sell order call.
type Order struct {
	Trader     common.Address
	Collateral common.Address
	Amount     *uint256.Int
	MinReturn  *uint256.Int
}

// MakeBuyOrderSelector returns the 4-byte selector of
// makeBuyOrder(address,address,uint256,uint256).
func MakeBuyOrderSelector() []byte {
	return common.CopyBytes(parsedABI.Methods[MakeBuyOrderMethod].ID)
}

// PackMakeBuyOrder returns the calldata of a makeBuyOrder call.
func PackMakeBuyOrder(order Order) ([]byte, error) {
	return pack(MakeBuyOrderMethod, order)
}

// PackMakeSellOrder returns the calldata of a makeSellOrder call.
func PackMakeSellOrder(order Order) ([]byte, error) {
	return pack(MakeSellOrderMethod, order)
}

// DecodeMakeBuyOrder parses the calldata of a makeBuyOrder call.
func DecodeMakeBuyOrder(data []byte) (*Order, error) {
	if len(data) < selectorLen {
		return nil, ErrNotBuyOrder
	}
	method, err := parsedABI.MethodById(data[:selectorLen])
	if err != nil || method.Name != MakeBuyOrderMethod {
		return nil, ErrNotBuyOrder
	}

	args, err := method.Inputs.Unpack(data[selectorLen:])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, err)
	}
	return parseOrder(args)
}

func pack(method string, order Order) ([]byte, error) {
	if order.Amount == nil || order.MinReturn == nil {
		return nil, fmt.Errorf("missing order amounts")
	}
	return parsedABI.Pack(
		method, order.Trader, order.Collateral,
		order.Amount.ToBig(), order.MinReturn.ToBig(),
	)
}

func parseOrder(args []interface{}) (*Order, error) {
	if len(args) != 4 {
		return nil, fmt.Errorf(
			"%w: expected 4 arguments, got %d", ErrMalformedPayload, len(args),
		)
	}
	trader, ok1 := args[0].(common.Address)
	collateral, ok2 := args[1].(common.Address)
	amount, ok3 := args[2].(*big.Int)
	minReturn, ok4 := args[3].(*big.Int)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return nil, fmt.Errorf("%w: unexpected argument types", ErrMalformedPayload)
	}

	// uint256 abi values always fit.
	amountU, _ := uint256.FromBig(amount)
	minReturnU, _ := uint256.FromBig(minReturn)
	return &Order{
		Trader:     trader,
		Collateral: collateral,
		Amount:     amountU,
		MinReturn:  minReturnU,
	}, nil
}
