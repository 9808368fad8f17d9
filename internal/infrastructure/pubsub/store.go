package pubsub

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/timshannon/badgerhold/v4"
)

// ErrSubscriptionNotFound is returned when removing an unknown subscription.
var ErrSubscriptionNotFound = errors.New("webhook not found")

// SubscriptionStore persists the webhook subscriptions.
type SubscriptionStore interface {
	// Add stores sub, doing nothing if its id is already known.
	Add(ctx context.Context, sub Subscription) error
	Remove(ctx context.Context, id string) error
	// ListForTopic returns the subscriptions of the given topic sorted by id,
	// those of all topics for ports.UnspecifiedTopic.
	ListForTopic(ctx context.Context, topic string) ([]Subscription, error)
	Close()
}

type inMemoryStore struct {
	lock *sync.RWMutex
	subs map[string]Subscription
}

// NewInMemoryStore returns a volatile SubscriptionStore.
func NewInMemoryStore() SubscriptionStore {
	return &inMemoryStore{&sync.RWMutex{}, make(map[string]Subscription)}
}

func (s *inMemoryStore) Add(_ context.Context, sub Subscription) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[sub.ID]; !ok {
		s.subs[sub.ID] = sub
	}
	return nil
}

func (s *inMemoryStore) Remove(_ context.Context, id string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.subs[id]; !ok {
		return ErrSubscriptionNotFound
	}
	delete(s.subs, id)
	return nil
}

func (s *inMemoryStore) ListForTopic(
	_ context.Context, topic string,
) ([]Subscription, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	subs := make([]Subscription, 0)
	for _, sub := range s.subs {
		if topic == ports.UnspecifiedTopic || sub.Event == topic {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

func (s *inMemoryStore) Close() {}

type badgerStore struct {
	store *badgerhold.Store
}

// NewBadgerStore returns a SubscriptionStore persisting to the given
// badgerhold store. The store is owned by the caller and is not closed by
// Close.
func NewBadgerStore(store *badgerhold.Store) SubscriptionStore {
	return &badgerStore{store}
}

func (s *badgerStore) Add(_ context.Context, sub Subscription) error {
	err := s.store.Insert(sub.ID, sub)
	if errors.Is(err, badgerhold.ErrKeyExists) {
		return nil
	}
	return err
}

func (s *badgerStore) Remove(_ context.Context, id string) error {
	err := s.store.Delete(id, Subscription{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return ErrSubscriptionNotFound
	}
	return err
}

func (s *badgerStore) ListForTopic(
	_ context.Context, topic string,
) ([]Subscription, error) {
	query := &badgerhold.Query{}
	if topic != ports.UnspecifiedTopic {
		query = badgerhold.Where("Event").Eq(topic)
	}

	var subs []Subscription
	if err := s.store.Find(&subs, query.SortBy("ID")); err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *badgerStore) Close() {}
