package marketmaker

import (
	"context"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// Service is the bonding curve market maker. Every operation that mutates
// the state runs in a unit of work spanning the repositories and the host,
// so that either all its effects are committed or none is. Operations are
// serialized, queries may run concurrently.
type Service struct {
	lock *sync.RWMutex

	repoManager ports.RepoManager
	host        ports.Host
	acl         ports.ACL
	publisher   ports.EventPublisher
	unit        *uow.UnitOfWork
}

func NewService(
	repoManager ports.RepoManager,
	host ports.Host,
	acl ports.ACL,
	publisher ports.EventPublisher,
) (*Service, error) {
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if host == nil {
		return nil, fmt.Errorf("missing host")
	}
	if acl == nil {
		return nil, fmt.Errorf("missing acl")
	}
	if publisher == nil {
		return nil, fmt.Errorf("missing event publisher")
	}

	transactionals := []uow.Transactional{repoManager}
	if t, ok := host.(uow.Transactional); ok {
		transactionals = append(transactionals, t)
	}

	return &Service{
		lock:        &sync.RWMutex{},
		repoManager: repoManager,
		host:        host,
		acl:         acl,
		publisher:   publisher,
		unit:        uow.NewUnitOfWork(transactionals...),
	}, nil
}

// run executes fn in a new unit of work and publishes the returned events
// once committed.
func (s *Service) run(
	ctx context.Context, fn func(ctx context.Context) ([]domain.Event, error),
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var events []domain.Event
	if err := s.unit.Run(ctx, func(ctx context.Context) error {
		evs, err := fn(ctx)
		if err != nil {
			return err
		}
		events = evs
		return nil
	}); err != nil {
		return err
	}

	s.publish(ctx, events...)
	return nil
}

func (s *Service) publish(ctx context.Context, events ...domain.Event) {
	for _, event := range events {
		if err := s.publisher.PublishEvent(ctx, event); err != nil {
			log.WithError(err).Warnf(
				"market maker: failed to publish %s event", event.Type(),
			)
		}
	}
}

func (s *Service) authorize(
	ctx context.Context, caller common.Address, role string,
) error {
	if !s.acl.HasPermission(ctx, caller, domain.MarketMakerEntity, role) {
		return fmt.Errorf("%w: %s lacks %s", domain.ErrAuthFailed, caller.Hex(), role)
	}
	return nil
}

func (s *Service) getMarketMaker(ctx context.Context) (*domain.MarketMaker, error) {
	return s.repoManager.MarketMakerRepository().GetMarketMaker(ctx)
}

func (s *Service) isContract(
	ctx context.Context, account common.Address,
) (bool, error) {
	ok, err := s.host.HasCode(ctx, account)
	if err != nil {
		return false, fmt.Errorf("checking code at %s: %w", account.Hex(), err)
	}
	return ok, nil
}
