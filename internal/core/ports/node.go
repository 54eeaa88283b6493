package ports

import (
	"context"
	"errors"

	"github.com/nomic-io/nomic-wallet/pkg/signatory"
	"github.com/nomic-io/nomic-wallet/pkg/transaction"
)

// ErrNetwork is returned, wrapping the underlying cause, for any failure of
// the node client in reaching the ledger or in getting a positive response.
var ErrNetwork = errors.New("node request failed")

// Account is the state of a ledger account relevant for signing.
type Account struct {
	Nonce   uint64
	Balance uint64
}

// NodeClient is the connection to the ledger. The wallet core never calls it
// directly: fetching fresh account state and submitting are owned by the
// application layer.
type NodeClient interface {
	GetAccount(ctx context.Context, pubkey []byte) (Account, error)
	GetSignatorySet(ctx context.Context) (*signatory.Set, error)
	Send(ctx context.Context, tx transaction.Transaction) error
}
