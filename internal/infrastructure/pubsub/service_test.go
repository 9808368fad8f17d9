package pubsub_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/pubsub"
	dbbadger "github.com/tdex-network/tdex-bondingcurve/internal/infrastructure/storage/db/badger"
)

const (
	secret      = "webhooksecret"
	buyTopic    = string(domain.EventMakeBuyOrder)
	testMessage = `{"event":"MakeBuyOrder"}`
)

var ctx = context.Background()

type request struct {
	path string
	body string
}

type testServer struct {
	*httptest.Server
	lock     sync.Mutex
	requests []request
}

func newTestServer(t *testing.T) *testServer {
	s := &testServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

func (s *testServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "bad method", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Path == "/failing" {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}
	if r.URL.Path == "/secured" {
		tokenString := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	body, _ := io.ReadAll(r.Body)
	s.lock.Lock()
	s.requests = append(s.requests, request{r.URL.Path, string(body)})
	s.lock.Unlock()
}

func (s *testServer) received() []request {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]request{}, s.requests...)
}

func storeFactories(t *testing.T) map[string]func() pubsub.SubscriptionStore {
	return map[string]func() pubsub.SubscriptionStore{
		"inmemory": pubsub.NewInMemoryStore,
		"badger": func() pubsub.SubscriptionStore {
			db, err := dbbadger.NewDbManager("", nil)
			require.NoError(t, err)
			t.Cleanup(db.Close)
			return pubsub.NewBadgerStore(db.Store)
		},
	}
}

func TestPubSubService(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		newStore := newStore
		t.Run(name, func(t *testing.T) {
			server := newTestServer(t)
			svc, err := pubsub.NewService(newStore(), 0)
			require.NoError(t, err)

			ids := make([]string, 0)
			for i := 0; i < 3; i++ {
				id, err := svc.Subscribe(ctx, buyTopic, server.URL+"/secured", secret)
				require.NoError(t, err)
				ids = append(ids, id)
			}
			id, err := svc.Subscribe(ctx, ports.AnyTopic, server.URL+"/all", "")
			require.NoError(t, err)
			ids = append(ids, id)

			subs, err := svc.ListSubscriptionsForTopic(ctx, buyTopic)
			require.NoError(t, err)
			require.Len(t, subs, 4)
			for _, sub := range subs[:3] {
				require.Equal(t, buyTopic, sub.Topic())
				require.True(t, sub.IsSecured())
			}
			require.False(t, subs[3].IsSecured())

			subs, err = svc.ListSubscriptionsForTopic(ctx, ports.UnspecifiedTopic)
			require.NoError(t, err)
			require.Len(t, subs, 4)

			err = svc.Publish(ctx, buyTopic, testMessage)
			require.NoError(t, err)
			require.Len(t, server.received(), 4)

			// only the catch-all subscription gets other events.
			err = svc.Publish(ctx, string(domain.EventOpen), testMessage)
			require.NoError(t, err)
			require.Len(t, server.received(), 5)

			for i, id := range ids {
				err := svc.Unsubscribe(ctx, id)
				require.NoError(t, err)

				subs, err := svc.ListSubscriptionsForTopic(ctx, ports.UnspecifiedTopic)
				require.NoError(t, err)
				require.Len(t, subs, len(ids)-1-i)
			}

			err = svc.Unsubscribe(ctx, ids[0])
			require.ErrorIs(t, err, pubsub.ErrSubscriptionNotFound)

			// all ok if there's nobody to notify.
			err = svc.Publish(ctx, buyTopic, testMessage)
			require.NoError(t, err)

			svc.Close()
		})
	}
}

func TestPublishEvent(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	svc, err := pubsub.NewService(pubsub.NewInMemoryStore(), 0)
	require.NoError(t, err)

	_, err = svc.Subscribe(ctx, buyTopic, server.URL+"/secured", secret)
	require.NoError(t, err)

	event := domain.MakeBuyOrderEvent{
		Buyer:         common.HexToAddress("0xa1"),
		Collateral:    common.HexToAddress("0xda1"),
		DepositAmount: uint256.NewInt(100),
		Fee:           uint256.NewInt(1),
		ReturnAmount:  uint256.NewInt(10),
		FeePct:        uint256.NewInt(0),
	}
	err = svc.PublishEvent(ctx, event)
	require.NoError(t, err)
	err = svc.PublishEvent(ctx, domain.OpenEvent{})
	require.NoError(t, err)

	svc.Close()

	requests := server.received()
	require.Len(t, requests, 1)

	payload := make(map[string]json.RawMessage)
	err = json.Unmarshal([]byte(requests[0].body), &payload)
	require.NoError(t, err)
	require.JSONEq(t, `"MakeBuyOrder"`, string(payload["event"]))
	require.Contains(t, string(payload["payload"]), "deposit_amount")
}

func TestPublishEventOrder(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	svc, err := pubsub.NewService(pubsub.NewInMemoryStore(), 0)
	require.NoError(t, err)

	_, err = svc.Subscribe(ctx, ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)

	events := make([]domain.Event, 0)
	for i := 0; i < 50; i++ {
		event := domain.MakeBuyOrderEvent{
			Buyer:         common.HexToAddress("0xa1"),
			Collateral:    common.HexToAddress("0xda1"),
			DepositAmount: uint256.NewInt(100),
			Fee:           uint256.NewInt(0),
			ReturnAmount:  uint256.NewInt(uint64(i)),
			FeePct:        uint256.NewInt(0),
		}
		events = append(events, event)
		err := svc.PublishEvent(ctx, event)
		require.NoError(t, err)
	}

	svc.Close()

	requests := server.received()
	require.Len(t, requests, len(events))
	for i, req := range requests {
		expected, err := json.Marshal(events[i])
		require.NoError(t, err)

		payload := make(map[string]json.RawMessage)
		err = json.Unmarshal([]byte(req.body), &payload)
		require.NoError(t, err)
		require.JSONEq(t, string(expected), string(payload["payload"]))
	}
}

func TestPublishEventAfterClose(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)
	svc, err := pubsub.NewService(pubsub.NewInMemoryStore(), 0)
	require.NoError(t, err)

	_, err = svc.Subscribe(ctx, ports.AnyTopic, server.URL+"/all", "")
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		lock      sync.Mutex
		published int
		errs      []error
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for j := 0; j < 20; j++ {
				err := svc.PublishEvent(ctx, domain.OpenEvent{})
				lock.Lock()
				if err != nil {
					errs = append(errs, err)
					lock.Unlock()
					return
				}
				published++
				lock.Unlock()
			}
		}()
	}

	svc.Close()
	wg.Wait()

	for _, err := range errs {
		require.ErrorIs(t, err, pubsub.ErrServiceClosed)
	}
	// every accepted event is delivered before Close returns.
	require.Len(t, server.received(), published)

	err = svc.PublishEvent(ctx, domain.OpenEvent{})
	require.ErrorIs(t, err, pubsub.ErrServiceClosed)

	// closing twice is harmless.
	svc.Close()
}

func TestFailingPubSubService(t *testing.T) {
	t.Parallel()

	server := newTestServer(t)

	t.Run("new service", func(t *testing.T) {
		svc, err := pubsub.NewService(nil, 0)
		require.EqualError(t, err, "missing subscription store")
		require.Nil(t, svc)
	})

	svc, err := pubsub.NewService(pubsub.NewInMemoryStore(), 0)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	t.Run("subscribe", func(t *testing.T) {
		tests := []struct {
			name     string
			topic    string
			endpoint string
		}{
			{"missing event", "", server.URL},
			{"invalid endpoint", buyTopic, "not an url"},
		}
		for _, tt := range tests {
			id, err := svc.Subscribe(ctx, tt.topic, tt.endpoint, "")
			require.Error(t, err, tt.name)
			require.Empty(t, id, tt.name)
		}
	})

	t.Run("publish", func(t *testing.T) {
		_, err := svc.Subscribe(ctx, buyTopic, server.URL+"/failing", "")
		require.NoError(t, err)
		_, err = svc.Subscribe(ctx, buyTopic, server.URL+"/secured", "wrongsecret")
		require.NoError(t, err)

		err = svc.Publish(ctx, buyTopic, testMessage)
		require.Error(t, err)
		require.Empty(t, server.received())
	})
}

type publisherFunc func(context.Context, domain.Event) error

func (f publisherFunc) PublishEvent(ctx context.Context, e domain.Event) error {
	return f(ctx, e)
}

func TestMultiPublisher(t *testing.T) {
	t.Parallel()

	var calls []string
	errA := io.ErrUnexpectedEOF
	publisher := pubsub.NewMultiPublisher(
		publisherFunc(func(context.Context, domain.Event) error {
			calls = append(calls, "a")
			return errA
		}),
		publisherFunc(func(context.Context, domain.Event) error {
			calls = append(calls, "b")
			return nil
		}),
	)

	err := publisher.PublishEvent(ctx, domain.OpenEvent{})
	require.ErrorIs(t, err, errA)
	require.Equal(t, []string{"a", "b"}, calls)

	err = pubsub.NewMultiPublisher().PublishEvent(ctx, domain.OpenEvent{})
	require.NoError(t, err)
}
