package main

import (
	"fmt"
	"strings"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var (
	accountFlag = &cli.StringFlag{
		Name:     "account",
		Usage:    "the account the permission is about",
		Required: true,
	}
	permissionFlags = []cli.Flag{
		accountFlag,
		&cli.StringFlag{
			Name:  "entity",
			Usage: "the resource the permission is granted on",
			Value: domain.MarketMakerEntity,
		},
		&cli.StringFlag{
			Name:     "action",
			Usage:    "the action granted, ie. one of " + strings.Join(domain.Roles(), ", "),
			Required: true,
		},
	}

	permission = cli.Command{
		Name:  "permission",
		Usage: "manage the permissions of accounts and issue their tokens",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "list the permissions held by an account",
				Flags:  []cli.Flag{accountFlag},
				Action: listPermissionsAction,
			},
			{
				Name:   "grant",
				Usage:  "grant a permission to an account",
				Flags:  permissionFlags,
				Action: grantAction,
			},
			{
				Name:   "revoke",
				Usage:  "revoke a permission from an account",
				Flags:  permissionFlags,
				Action: revokeAction,
			},
			{
				Name:  "token",
				Usage: "issue a bearer token identifying an account",
				Flags: []cli.Flag{
					accountFlag,
					&cli.Int64Flag{
						Name:  "ttl",
						Usage: "the validity of the token in seconds, 0 for no expiry",
					},
				},
				Action: issueTokenAction,
			},
		},
	}
)

func listPermissionsAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply []httpinterface.PermissionResponse
	path := "/v1/permissions/" + ctx.String("account")
	if err := client.get(path, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func grantAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.post(
		"/v1/permissions", permissionRequest(ctx), nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("permission granted")
	return nil
}

func revokeAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.delete(
		"/v1/permissions", permissionRequest(ctx), nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("permission revoked")
	return nil
}

func issueTokenAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.TokenResponse
	if err := client.post("/v1/tokens", httpinterface.TokenRequest{
		Account:    ctx.String("account"),
		TTLSeconds: ctx.Int64("ttl"),
	}, &reply); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("token:", reply.Token)
	return nil
}

func permissionRequest(ctx *cli.Context) httpinterface.PermissionRequest {
	return httpinterface.PermissionRequest{
		Account: ctx.String("account"),
		Entity:  ctx.String("entity"),
		Action:  ctx.String("action"),
	}
}
