package inmemory

import (
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/ports"
	"github.com/tdex-network/tdex-bondingcurve/internal/storageutil/uow"
)

// txState keeps the journal of the open transaction, if any, shared by all
// the repositories of a RepoManager. Transactions are serialized: beginning
// one waits for the open one to be committed or rolled back.
type txState struct {
	journals uow.Journals
}

func (s *txState) begin() (uow.Tx, error) {
	return s.journals.Begin(), nil
}

// record adds the given undo function to the open journal. Writes made
// outside of a transaction are applied right away.
func (s *txState) record(undo func()) {
	s.journals.Record(undo)
}

type RepoManager struct {
	tx                        *txState
	marketMakerRepository     domain.MarketMakerRepository
	collateralTokenRepository domain.CollateralTokenRepository
}

func NewRepoManager() ports.RepoManager {
	tx := &txState{}

	return &RepoManager{
		tx:                        tx,
		marketMakerRepository:     newMarketMakerRepositoryImpl(tx),
		collateralTokenRepository: newCollateralTokenRepositoryImpl(tx),
	}
}

func (d *RepoManager) MarketMakerRepository() domain.MarketMakerRepository {
	return d.marketMakerRepository
}

func (d *RepoManager) CollateralTokenRepository() domain.CollateralTokenRepository {
	return d.collateralTokenRepository
}

// Begin implements uow.Transactional.
func (d *RepoManager) Begin() (uow.Tx, error) {
	return d.tx.begin()
}

func (d *RepoManager) Close() {}
