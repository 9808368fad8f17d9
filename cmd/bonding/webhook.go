package main

import (
	"fmt"
	"strings"

	pubsubapp "github.com/tdex-network/tdex-bondingcurve/internal/core/application/pubsub"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	httpinterface "github.com/tdex-network/tdex-bondingcurve/internal/interfaces/http"
	"github.com/urfave/cli/v2"
)

var eventFlagUsage = fmt.Sprintf(
	"the event triggering the webhook endpoint, one of %s or %s for any event",
	eventNames(), ports.AnyTopic,
)

var (
	webhook = cli.Command{
		Name:  "webhook",
		Usage: "add or remove webhooks",
		Subcommands: []*cli.Command{
			webhookAddCmd, webhookRemoveCmd,
		},
	}
	listwebhooks = cli.Command{
		Name:  "webhooks",
		Usage: "list all webhooks, optionally filtered by target event",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "event",
				Usage: eventFlagUsage,
			},
		},
		Action: listWebhooksAction,
	}

	webhookAddCmd = &cli.Command{
		Name:  "add",
		Usage: "add a (secured) webhook endpoint called whenever a target event occurs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "endpoint",
				Usage:    "the webhook endpoint to be called whenever the target event occurs",
				Required: true,
			},
			&cli.StringFlag{
				Name: "secret",
				Usage: "the eventual secret to use to sign a bearer token for " +
					"authenticating requests to the webhook endpoint",
				Value: "",
			},
			&cli.StringFlag{
				Name:  "event",
				Usage: eventFlagUsage,
				Value: ports.AnyTopic,
			},
		},
		Action: addWebhookAction,
	}
	webhookRemoveCmd = &cli.Command{
		Name:  "remove",
		Usage: "remove a webhook",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "id",
				Usage:    "the id of the webhook to remove",
				Required: true,
			},
		},
		Action: removeWebhookAction,
	}
)

func addWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply httpinterface.IDResponse
	if err := client.post("/v1/webhooks", httpinterface.WebhookRequest{
		Event:    ctx.String("event"),
		Endpoint: ctx.String("endpoint"),
		Secret:   ctx.String("secret"),
	}, &reply); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("hook id:", reply.ID)
	return nil
}

func removeWebhookAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.delete(
		"/v1/webhooks/"+ctx.String("id"), nil, nil,
	); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("webhook removed")
	return nil
}

func listWebhooksAction(ctx *cli.Context) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	var reply []pubsubapp.WebhookInfo
	if err := client.get(
		"/v1/webhooks", query("event", ctx.String("event")), &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)
	return nil
}

func eventNames() string {
	names := make([]string, 0)
	for _, e := range domain.EventTypes() {
		names = append(names, string(e))
	}
	return strings.Join(names, ", ")
}
