package ports

import (
	"context"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
)

const (
	// AnyTopic subscribes to every event.
	AnyTopic = "*"
	// UnspecifiedTopic selects the subscriptions of all topics when listing.
	UnspecifiedTopic = ""
)

// EventPublisher receives the events of committed operations.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event) error
}

// Subscription is an endpoint notified of the events of a topic.
type Subscription interface {
	Id() string
	Topic() string
	NotifyAt() string
	IsSecured() bool
}

// PubSub is an EventPublisher delivering events to subscribed endpoints.
type PubSub interface {
	EventPublisher
	Subscribe(ctx context.Context, topic, endpoint, secret string) (string, error)
	Unsubscribe(ctx context.Context, id string) error
	ListSubscriptionsForTopic(
		ctx context.Context, topic string,
	) ([]Subscription, error)
	Publish(ctx context.Context, topic, message string) error
	Close()
}
