package ports

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// ACL is the authorization collaborator.
type ACL interface {
	HasPermission(
		ctx context.Context, account common.Address, resource, action string,
	) bool
}
