package chain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tdex-network/tdex-bondingcurve/pkg/marketmaking/formula"
)

const (
	BondedTokenName  = "bonded-token"
	TokenManagerName = "token-manager"
	ReserveName      = "reserve"
	FormulaName      = "bancor-formula"
)

// Deployment lists the contracts the market maker works with.
type Deployment struct {
	Token        common.Address
	TokenManager common.Address
	Reserve      common.Address
	Formula      common.Address
	// Collaterals maps the names of the deployed collateral tokens to their
	// addresses.
	Collaterals map[string]common.Address
}

// Deploy makes sure the bonded token, its token manager, the reserve, the
// Bancor formula and the named collateral tokens are deployed, returning
// their addresses. Contracts already deployed are reused by name.
func (h *Host) Deploy(
	ctx context.Context, collateralNames []string,
) (*Deployment, error) {
	contracts, err := h.store.GetContracts(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]Contract, len(contracts))
	for _, c := range contracts {
		byName[c.Name] = c
	}

	getOrDeploy := func(c Contract) (common.Address, error) {
		if existing, ok := byName[c.Name]; ok {
			if existing.Kind != c.Kind {
				return common.Address{}, fmt.Errorf(
					"%w: %s", ErrWrongContractKind, c.Name,
				)
			}
			return existing.Address, nil
		}
		addr, err := h.deploy(ctx, c)
		if err != nil {
			return common.Address{}, fmt.Errorf("deploying %s: %w", c.Name, err)
		}
		c.Address = addr
		byName[c.Name] = c
		return addr, nil
	}

	d := &Deployment{Collaterals: make(map[string]common.Address)}
	if d.Token, err = getOrDeploy(Contract{
		Kind: KindToken, Name: BondedTokenName,
	}); err != nil {
		return nil, err
	}
	if d.TokenManager, err = getOrDeploy(Contract{
		Kind:             KindTokenManager,
		Name:             TokenManagerName,
		Token:            d.Token,
		MaxAccountTokens: new(uint256.Int).SetAllOne(),
	}); err != nil {
		return nil, err
	}
	if d.Reserve, err = getOrDeploy(Contract{
		Kind: KindReserve, Name: ReserveName,
	}); err != nil {
		return nil, err
	}
	if d.Formula, err = getOrDeploy(Contract{
		Kind: KindFormula, Name: FormulaName, FormulaType: formula.BancorType,
	}); err != nil {
		return nil, err
	}
	for _, name := range collateralNames {
		addr, err := getOrDeploy(Contract{Kind: KindToken, Name: name})
		if err != nil {
			return nil, err
		}
		d.Collaterals[name] = addr
	}

	return d, nil
}

// DeployToken deploys a new fungible token.
func (h *Host) DeployToken(
	ctx context.Context, name string,
) (common.Address, error) {
	return h.deploy(ctx, Contract{Kind: KindToken, Name: name})
}

// DeployTokenManager deploys a token manager minting the given token up to
// maxAccountTokens per account.
func (h *Host) DeployTokenManager(
	ctx context.Context, name string, token common.Address,
	maxAccountTokens *uint256.Int,
) (common.Address, error) {
	return h.deploy(ctx, Contract{
		Kind:             KindTokenManager,
		Name:             name,
		Token:            token,
		MaxAccountTokens: maxAccountTokens.Clone(),
	})
}

// DeployReserve deploys a new reserve agent.
func (h *Host) DeployReserve(
	ctx context.Context, name string,
) (common.Address, error) {
	return h.deploy(ctx, Contract{Kind: KindReserve, Name: name})
}

// DeployFormula deploys a pricing formula of the given type.
func (h *Host) DeployFormula(
	ctx context.Context, name string, formulaType int,
) (common.Address, error) {
	return h.deploy(ctx, Contract{
		Kind: KindFormula, Name: name, FormulaType: formulaType,
	})
}
