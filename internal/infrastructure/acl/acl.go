// Package acl implements the authorization collaborator of the market maker
// as a list of permissions, each granting an operation on a resource to an
// account.
package acl

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-bondingcurve/internal/core/domain"
	"gopkg.in/macaroon-bakery.v2/bakery"
)

// AnyEntity is the wildcard account. A permission granted to AnyEntity is
// held by every account.
var AnyEntity = common.HexToAddress("0xffffffffffffffffffffffffffffffffffffffff")

// ManagePermissionsOp allows to grant and revoke permissions.
var ManagePermissionsOp = bakery.Op{Entity: "acl", Action: "MANAGE_PERMISSIONS_ROLE"}

var (
	// ErrInvalidPermission is returned when granting an unknown action.
	ErrInvalidPermission = errors.New("invalid permission")
)

// Permission grants Op to Account.
type Permission struct {
	Account common.Address
	Op      bakery.Op
}

// ACL is an in-memory access control list, safe for concurrent use.
type ACL struct {
	lock  *sync.RWMutex
	perms map[bakery.Op]map[common.Address]struct{}
}

// NewACL returns an ACL granting the given permissions.
func NewACL(perms ...Permission) (*ACL, error) {
	a := &ACL{
		lock:  &sync.RWMutex{},
		perms: make(map[bakery.Op]map[common.Address]struct{}),
	}
	for _, p := range perms {
		if err := a.Grant(p.Account, p.Op); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// MarketMakerOps returns the ops of every market maker permission.
func MarketMakerOps() []bakery.Op {
	roles := domain.Roles()
	ops := make([]bakery.Op, 0, len(roles))
	for _, role := range roles {
		ops = append(ops, bakery.Op{
			Entity: domain.MarketMakerEntity,
			Action: role,
		})
	}
	return ops
}

// AdminOps returns the market maker ops plus those to manage webhooks and
// permissions.
func AdminOps() []bakery.Op {
	return append(
		MarketMakerOps(),
		bakery.Op{Entity: domain.WebhookEntity, Action: domain.ManageWebhookRole},
		ManagePermissionsOp,
	)
}

// HasPermission returns whether account, or AnyEntity, was granted action on
// resource.
func (a *ACL) HasPermission(
	_ context.Context, account common.Address, resource, action string,
) bool {
	a.lock.RLock()
	defer a.lock.RUnlock()

	accounts, ok := a.perms[bakery.Op{Entity: resource, Action: action}]
	if !ok {
		return false
	}
	if _, ok := accounts[account]; ok {
		return true
	}
	_, ok = accounts[AnyEntity]
	return ok
}

// Grant gives op to account.
func (a *ACL) Grant(account common.Address, op bakery.Op) error {
	if !isValidOp(op) {
		return ErrInvalidPermission
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	if _, ok := a.perms[op]; !ok {
		a.perms[op] = make(map[common.Address]struct{})
	}
	a.perms[op][account] = struct{}{}

	log.Debugf("acl: granted %s:%s to %s", op.Entity, op.Action, account.Hex())
	return nil
}

// Revoke takes op away from account. It's a no-op if never granted.
func (a *ACL) Revoke(account common.Address, op bakery.Op) {
	a.lock.Lock()
	defer a.lock.Unlock()

	accounts, ok := a.perms[op]
	if !ok {
		return
	}
	delete(accounts, account)
	if len(accounts) == 0 {
		delete(a.perms, op)
	}

	log.Debugf("acl: revoked %s:%s from %s", op.Entity, op.Action, account.Hex())
}

// Permissions returns the ops granted directly to account, sorted.
func (a *ACL) Permissions(account common.Address) []bakery.Op {
	a.lock.RLock()
	defer a.lock.RUnlock()

	ops := make([]bakery.Op, 0)
	for op, accounts := range a.perms {
		if _, ok := accounts[account]; ok {
			ops = append(ops, op)
		}
	}
	sort.Slice(ops, func(i, j int) bool {
		if ops[i].Entity != ops[j].Entity {
			return ops[i].Entity < ops[j].Entity
		}
		return ops[i].Action < ops[j].Action
	})
	return ops
}

func isValidOp(op bakery.Op) bool {
	switch op.Entity {
	case domain.MarketMakerEntity:
		return domain.IsValidRole(op.Action)
	case domain.WebhookEntity:
		return op.Action == domain.ManageWebhookRole
	default:
		return len(op.Entity) > 0 && len(op.Action) > 0
	}
}
