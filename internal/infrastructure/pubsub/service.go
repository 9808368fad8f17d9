// Package pubsub delivers the events of the market maker to the webhooks
// subscribed to them.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/pkg/circuitbreaker"
	"golang.org/x/sync/errgroup"
)

const (
	defaultRequestTimeout = 15 * time.Second
	queueSize             = 256
)

// ErrServiceClosed is returned when publishing an event after Close.
var ErrServiceClosed = errors.New("pubsub service is closed")

type queuedEvent struct {
	topic   string
	message string
}

type service struct {
	store      SubscriptionStore
	httpClient *http.Client
	cb         *gobreaker.CircuitBreaker

	lock   sync.Mutex
	closed bool
	queue  chan queuedEvent
	done   chan struct{}
}

// NewService returns a webhook pubsub over the given store. A zero
// requestTimeout falls back to 15 seconds.
func NewService(
	store SubscriptionStore, requestTimeout time.Duration,
) (ports.PubSub, error) {
	if store == nil {
		return nil, fmt.Errorf("missing subscription store")
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}

	ws := &service{
		store:      store,
		httpClient: &http.Client{Timeout: requestTimeout},
		cb:         circuitbreaker.NewCircuitBreaker("webhook"),
		queue:      make(chan queuedEvent, queueSize),
		done:       make(chan struct{}),
	}
	go ws.deliver()

	return ws, nil
}

func (ws *service) Subscribe(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}
	if err := ws.store.Add(ctx, *sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (ws *service) Unsubscribe(ctx context.Context, id string) error {
	return ws.store.Remove(ctx, id)
}

func (ws *service) ListSubscriptionsForTopic(
	ctx context.Context, topic string,
) ([]ports.Subscription, error) {
	subs, err := ws.listSubscriptionsForTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	return subs.toPortable(), nil
}

// Publish delivers message to the subscribers of topic and of AnyTopic,
// returning the first delivery failure.
func (ws *service) Publish(ctx context.Context, topic, message string) error {
	subs, err := ws.listSubscriptionsForTopic(ctx, topic)
	if err != nil {
		return err
	}

	eg, ctx := errgroup.WithContext(ctx)
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return ws.doRequest(ctx, sub, message) })
	}
	return eg.Wait()
}

// PublishEvent queues the event for delivery so that slow endpoints don't
// hold the caller. Events are delivered one at a time in the order they
// were published. Failures are logged.
func (ws *service) PublishEvent(_ context.Context, event domain.Event) error {
	topic := string(event.Type())
	message, err := json.Marshal(map[string]interface{}{
		"event":   topic,
		"payload": event,
	})
	if err != nil {
		return fmt.Errorf("serializing %s event: %w", topic, err)
	}

	ws.lock.Lock()
	defer ws.lock.Unlock()

	if ws.closed {
		return ErrServiceClosed
	}
	ws.queue <- queuedEvent{topic, string(message)}
	return nil
}

// Close delivers the queued events and closes the store.
func (ws *service) Close() {
	ws.lock.Lock()
	if ws.closed {
		ws.lock.Unlock()
		return
	}
	ws.closed = true
	close(ws.queue)
	ws.lock.Unlock()

	<-ws.done
	ws.store.Close()
}

func (ws *service) deliver() {
	defer close(ws.done)

	for e := range ws.queue {
		if err := ws.Publish(context.Background(), e.topic, e.message); err != nil {
			log.WithError(err).Warnf("pubsub: failed to deliver %s event", e.topic)
		}
	}
}

func (ws *service) listSubscriptionsForTopic(
	ctx context.Context, topic string,
) (subscriptions, error) {
	subs, err := ws.store.ListForTopic(ctx, topic)
	if err != nil {
		return nil, err
	}
	if topic != ports.AnyTopic && topic != ports.UnspecifiedTopic {
		subsForAnyTopic, err := ws.store.ListForTopic(ctx, ports.AnyTopic)
		if err != nil {
			return nil, err
		}
		subs = append(subs, subsForAnyTopic...)
	}
	return subs, nil
}

func (ws *service) doRequest(
	ctx context.Context, sub Subscription, payload string,
) error {
	_, err := ws.cb.Execute(func() (interface{}, error) {
		headers := map[string]string{
			"Content-Type": "application/json",
		}
		if sub.IsSecured() {
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
				IssuedAt: time.Now().Unix(),
				Subject:  sub.Event,
			})
			tokenString, err := token.SignedString([]byte(sub.Secret))
			if err != nil {
				return nil, err
			}
			headers["Authorization"] = fmt.Sprintf("Bearer %s", tokenString)
		}

		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, sub.Endpoint, strings.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		rs, err := ws.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer rs.Body.Close()

		if rs.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(rs.Body)
			return nil, fmt.Errorf(
				"webhook %s replied %d: %s", sub.ID, rs.StatusCode, body,
			)
		}
		return nil, nil
	})

	return err
}
