package ports

import (
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// RepoManager interface defines the repositories holding the market maker
// state. Begin opens a transaction spanning all of them.
type RepoManager interface {
	uow.Transactional

	MarketMakerRepository() domain.MarketMakerRepository
	CollateralTokenRepository() domain.CollateralTokenRepository

	Close()
}
