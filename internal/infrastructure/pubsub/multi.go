package pubsub

import (
	"context"
	"errors"

	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
)

type multiPublisher []ports.EventPublisher

// NewMultiPublisher returns an EventPublisher forwarding every event to all
// the given publishers, in order. It fails with the joined errors of the
// publishers that failed.
func NewMultiPublisher(publishers ...ports.EventPublisher) ports.EventPublisher {
	return multiPublisher(publishers)
}

func (m multiPublisher) PublishEvent(
	ctx context.Context, event domain.Event,
) error {
	errs := make([]error, 0)
	for _, p := range m {
		if err := p.PublishEvent(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
