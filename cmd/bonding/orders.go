package main

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/tdex-network/tdex-bondingcurve/pkg/mmabi"
	"github.com/urfave/cli/v2"
)

var (
	amountFlag = &cli.StringFlag{
		Name:     "amount",
		Usage:    "the amount, in base units",
		Required: true,
	}
	minReturnFlag = &cli.StringFlag{
		Name:  "min_return",
		Usage: "the min amount to receive for the order not to fail",
		Value: "",
	}

	preview = cli.Command{
		Name:  "preview",
		Usage: "preview the outcome of a buy or sell order at the current state",
		Flags: []cli.Flag{
			collateralFlag,
			amountFlag,
			&cli.BoolFlag{
				Name:  "sell",
				Usage: "preview a sell order instead of a buy one",
			},
		},
		Action: previewAction,
	}
	buy = cli.Command{
		Name:  "buy",
		Usage: "buy bonded tokens by depositing collateral",
		Flags: []cli.Flag{
			collateralFlag,
			amountFlag,
			minReturnFlag,
			&cli.StringFlag{
				Name:  "buyer",
				Usage: "the account receiving the bonded tokens, defaults to the caller",
			},
			&cli.StringFlag{
				Name:  "value",
				Usage: "the native asset attached to the order, must equal amount for native collateral and be zero otherwise",
			},
		},
		Action: buyAction,
	}
	sell = cli.Command{
		Name:  "sell",
		Usage: "sell bonded tokens in exchange of collateral",
		Flags: []cli.Flag{
			collateralFlag,
			amountFlag,
			minReturnFlag,
			&cli.StringFlag{
				Name:  "seller",
				Usage: "the account whose tokens are sold, defaults to the caller",
			},
		},
		Action: sellAction,
	}
	approveAndCall = cli.Command{
		Name:  "approveandcall",
		Usage: "approve collateral to the market maker and buy in a single call",
		Flags: []cli.Flag{
			collateralFlag,
			amountFlag,
			minReturnFlag,
			&cli.StringFlag{
				Name:     "account",
				Usage:    "the caller's account, the buyer of the bonded tokens",
				Required: true,
			},
		},
		Action: approveAndCallAction,
	}
	balance = cli.Command{
		Name:  "balance",
		Usage: "get the balance of an account",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "the account holding the asset",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "asset",
				Usage: "the token address, defaults to the native asset",
			},
		},
		Action: balanceAction,
	}
	faucet = cli.Command{
		Name:  "faucet",
		Usage: "fund the caller with some collateral, only on development networks",
		Flags: []cli.Flag{
			amountFlag,
			&cli.StringFlag{
				Name:  "asset",
				Usage: "the token address, defaults to the native asset",
				Value: common.Address{}.Hex(),
			},
		},
		Action: faucetAction,
	}
)

func previewAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	side := "buy"
	if ctx.Bool("sell") {
		side = "sell"
	}

	var reply httpinterface.OrderResponse
	path := fmt.Sprintf(
		"/v1/collaterals/%s/preview/%s", ctx.String("collateral"), side,
	)
	if err := client.get(
		path, query("amount", ctx.String("amount")), &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func buyAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.OrderResponse
	if err := client.post("/v1/orders/buy", httpinterface.BuyOrderRequest{
		Buyer:           ctx.String("buyer"),
		Collateral:      ctx.String("collateral"),
		DepositAmount:   ctx.String("amount"),
		MinReturnAmount: ctx.String("min_return"),
		Value:           ctx.String("value"),
	}, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func sellAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.OrderResponse
	if err := client.post("/v1/orders/sell", httpinterface.SellOrderRequest{
		Seller:          ctx.String("seller"),
		Collateral:      ctx.String("collateral"),
		Amount:          ctx.String("amount"),
		MinReturnAmount: ctx.String("min_return"),
	}, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func approveAndCallAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	req, err := approveAndCallRequest(
		ctx.String("account"), ctx.String("collateral"),
		ctx.String("amount"), ctx.String("min_return"),
	)
	if err != nil {
		return err
	}

	var reply httpinterface.OrderResponse
	if err := client.post("/v1/orders/approve-and-call", req, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

// approveAndCallRequest encodes the buy order the market maker is called
// back with once the collateral is approved.
func approveAndCallRequest(
	account, collateral, amount, minReturn string,
) (*httpinterface.ApproveAndCallRequest, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("invalid account")
	}
	if !common.IsHexAddress(collateral) {
		return nil, fmt.Errorf("invalid collateral")
	}
	depositAmount, err := uint256.FromDecimal(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %s", err)
	}
	minReturnAmount := new(uint256.Int)
	if minReturn != "" {
		if minReturnAmount, err = uint256.FromDecimal(minReturn); err != nil {
			return nil, fmt.Errorf("invalid min return: %s", err)
		}
	}

	data, err := mmabi.PackMakeBuyOrder(mmabi.Order{
		Trader:     common.HexToAddress(account),
		Collateral: common.HexToAddress(collateral),
		Amount:     depositAmount,
		MinReturn:  minReturnAmount,
	})
	if err != nil {
		return nil, err
	}

	return &httpinterface.ApproveAndCallRequest{
		Token:  collateral,
		Amount: amount,
		Data:   "0x" + hex.EncodeToString(data),
	}, nil
}

func balanceAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.BalanceResponse
	path := "/v1/balances/" + ctx.String("account")
	if err := client.get(
		path, query("asset", ctx.String("asset")), &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func faucetAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.post("/v1/faucet", httpinterface.FaucetRequest{
		Asset:  ctx.String("asset"),
		Amount: ctx.String("amount"),
	}, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("account funded")
	return nil
}
