package domain

import "context"

// MarketMakerRepository is the abstraction for any kind of database intended
// to persist the market maker configuration.
type MarketMakerRepository interface {
	// AddMarketMaker stores the configuration of a freshly initialized market
	// maker. It returns ErrAlreadyInitialized if one is already stored.
	AddMarketMaker(ctx context.Context, marketMaker *MarketMaker) error
	// GetMarketMaker returns the stored configuration or ErrNotInitialized.
	GetMarketMaker(ctx context.Context) (*MarketMaker, error)
	// UpdateMarketMaker updates the configuration. The closure function let's
	// to commit multiple changes in a transactional way.
	UpdateMarketMaker(
		ctx context.Context,
		updateFn func(m *MarketMaker) (*MarketMaker, error),
	) error
}
