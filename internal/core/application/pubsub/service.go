// Package pubsub manages the webhooks notified of the market maker events.
package pubsub

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
)

var (
	// ErrInvalidEvent is returned for webhooks of unknown events.
	ErrInvalidEvent = errors.New("invalid webhook event type")
)

type WebhookArgs struct {
	// Event is a market maker event type or ports.AnyTopic.
	Event    string
	Endpoint string
	Secret   string
}

type WebhookInfo struct {
	ID        string `json:"id"`
	Event     string `json:"event"`
	Endpoint  string `json:"endpoint"`
	IsSecured bool   `json:"is_secured"`
}

type Service struct {
	pubsub ports.PubSub
	acl    ports.ACL
}

func NewService(pubsub ports.PubSub, acl ports.ACL) (*Service, error) {
	if pubsub == nil {
		return nil, fmt.Errorf("missing pubsub")
	}
	if acl == nil {
		return nil, fmt.Errorf("missing acl")
	}
	return &Service{pubsub, acl}, nil
}

func (s *Service) AddWebhook(
	ctx context.Context, caller common.Address, args WebhookArgs,
) (string, error) {
	if err := s.authorize(ctx, caller); err != nil {
		return "", err
	}
	if !isValidEvent(args.Event) {
		return "", ErrInvalidEvent
	}

	id, err := s.pubsub.Subscribe(ctx, args.Event, args.Endpoint, args.Secret)
	if err != nil {
		return "", err
	}

	log.Infof("pubsub: added webhook %s for %s events", id, args.Event)
	return id, nil
}

func (s *Service) RemoveWebhook(
	ctx context.Context, caller common.Address, id string,
) error {
	if err := s.authorize(ctx, caller); err != nil {
		return err
	}
	if err := s.pubsub.Unsubscribe(ctx, id); err != nil {
		return err
	}

	log.Infof("pubsub: removed webhook %s", id)
	return nil
}

// ListWebhooks returns the webhooks notified of the given event, all of them
// if event is empty.
func (s *Service) ListWebhooks(
	ctx context.Context, caller common.Address, event string,
) ([]WebhookInfo, error) {
	if err := s.authorize(ctx, caller); err != nil {
		return nil, err
	}
	if event != ports.UnspecifiedTopic && !isValidEvent(event) {
		return nil, ErrInvalidEvent
	}

	subs, err := s.pubsub.ListSubscriptionsForTopic(ctx, event)
	if err != nil {
		return nil, err
	}
	hooks := make([]WebhookInfo, 0, len(subs))
	for _, sub := range subs {
		hooks = append(hooks, WebhookInfo{
			ID:        sub.Id(),
			Event:     sub.Topic(),
			Endpoint:  sub.NotifyAt(),
			IsSecured: sub.IsSecured(),
		})
	}
	return hooks, nil
}

func (s *Service) authorize(ctx context.Context, caller common.Address) error {
	if !s.acl.HasPermission(
		ctx, caller, domain.WebhookEntity, domain.ManageWebhookRole,
	) {
		return fmt.Errorf(
			"%w: %s lacks %s", domain.ErrAuthFailed, caller.Hex(),
			domain.ManageWebhookRole,
		)
	}
	return nil
}

func isValidEvent(event string) bool {
	if event == ports.AnyTopic {
		return true
	}
	for _, eventType := range domain.EventTypes() {
		if string(eventType) == event {
			return true
		}
	}
	return false
}
