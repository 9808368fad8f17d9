package main

import (
	"fmt"
	"net/url"

	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var collateralFlag = &cli.StringFlag{
	Name:     "collateral",
	Usage:    "the address of the collateral token, the zero address for the native asset",
	Required: true,
}

var (
	info = cli.Command{
		Name:   "info",
		Usage:  "get info about the market maker",
		Action: infoAction,
	}
	open = cli.Command{
		Name:   "open",
		Usage:  "open a gated market maker to orders",
		Action: openAction,
	}
	beneficiary = cli.Command{
		Name:  "beneficiary",
		Usage: "update the account receiving the fees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "the new beneficiary",
				Required: true,
			},
		},
		Action: updateBeneficiaryAction,
	}
	formula = cli.Command{
		Name:  "formula",
		Usage: "update the pricing formula",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "address",
				Usage:    "the address of the new formula",
				Required: true,
			},
		},
		Action: updateFormulaAction,
	}
	fees = cli.Command{
		Name:  "fees",
		Usage: "update the fees of buy and sell orders, as fractions of 10^18",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "buy_fee",
				Usage:    "the fee on buy orders",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "sell_fee",
				Usage:    "the fee on sell orders",
				Required: true,
			},
		},
		Action: updateFeesAction,
	}
	collaterals = cli.Command{
		Name:   "collaterals",
		Usage:  "list all whitelisted collateral tokens",
		Action: listCollateralsAction,
	}
	price = cli.Command{
		Name:   "price",
		Usage:  "get the static price of the bonded token in parts per million of collateral",
		Flags:  []cli.Flag{collateralFlag},
		Action: priceAction,
	}

	curveFlags = []cli.Flag{
		collateralFlag,
		&cli.StringFlag{
			Name:  "virtual_supply",
			Usage: "the virtual supply added to the bonded token's supply",
			Value: "0",
		},
		&cli.StringFlag{
			Name:  "virtual_balance",
			Usage: "the virtual balance added to the reserve's balance",
			Value: "0",
		},
		&cli.UintFlag{
			Name:     "reserve_ratio",
			Usage:    "the reserve ratio in parts per million",
			Required: true,
		},
	}
	collateral = cli.Command{
		Name:  "collateral",
		Usage: "manage the collateral tokens accepted by the market maker",
		Subcommands: []*cli.Command{
			{
				Name:   "get",
				Usage:  "get the registry entry of a collateral token",
				Flags:  []cli.Flag{collateralFlag},
				Action: getCollateralAction,
			},
			{
				Name:   "add",
				Usage:  "whitelist a collateral token",
				Flags:  curveFlags,
				Action: addCollateralAction,
			},
			{
				Name:   "update",
				Usage:  "update the curve parameters of a collateral token",
				Flags:  curveFlags,
				Action: updateCollateralAction,
			},
			{
				Name:   "remove",
				Usage:  "remove a collateral token from the whitelist",
				Flags:  []cli.Flag{collateralFlag},
				Action: removeCollateralAction,
			},
		},
	}
)

func infoAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.InfoResponse
	if err := client.get("/v1/info", nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func openAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.post("/v1/open", nil, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("market maker is open")
	return nil
}

func updateBeneficiaryAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.put("/v1/beneficiary", httpinterface.BeneficiaryRequest{
		Beneficiary: ctx.String("account"),
	}, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("beneficiary updated")
	return nil
}

func updateFormulaAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.put("/v1/formula", httpinterface.FormulaRequest{
		Formula: ctx.String("address"),
	}, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("formula updated")
	return nil
}

func updateFeesAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.put("/v1/fees", httpinterface.FeesRequest{
		BuyFeePct:  ctx.String("buy_fee"),
		SellFeePct: ctx.String("sell_fee"),
	}, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("fees updated")
	return nil
}

func listCollateralsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply []httpinterface.CollateralResponse
	if err := client.get("/v1/collaterals", nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func getCollateralAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.CollateralResponse
	path := "/v1/collaterals/" + ctx.String("collateral")
	if err := client.get(path, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func addCollateralAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.post(
		"/v1/collaterals", collateralRequest(ctx), nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("collateral token whitelisted")
	return nil
}

func updateCollateralAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	path := "/v1/collaterals/" + ctx.String("collateral")
	if err := client.put(path, collateralRequest(ctx), nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("collateral token updated")
	return nil
}

func removeCollateralAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	path := "/v1/collaterals/" + ctx.String("collateral")
	if err := client.delete(path, nil, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("collateral token removed")
	return nil
}

func priceAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.PriceResponse
	path := fmt.Sprintf("/v1/collaterals/%s/price", ctx.String("collateral"))
	if err := client.get(path, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func collateralRequest(ctx *cli.Context) httpinterface.CollateralRequest {
	return httpinterface.CollateralRequest{
		Collateral:     ctx.String("collateral"),
		VirtualSupply:  ctx.String("virtual_supply"),
		VirtualBalance: ctx.String("virtual_balance"),
		ReserveRatio:   uint32(ctx.Uint("reserve_ratio")),
	}
}

func query(kv ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			q.Set(kv[i], kv[i+1])
		}
	}
	return q
}
