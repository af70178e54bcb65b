package ports

import (
	"context"

	"github.com/mvelasco/mueslibot/internal/domain"
)

// ChainContext is the boundary to the external ledger client. It can query
// chain state and build, sign and submit a transaction from a TxPlan; key
// handling and fee balancing live entirely behind it.
type ChainContext interface {
	// Utxos returns the current unspent outputs of an address.
	Utxos(ctx context.Context, address string) ([]domain.UTxO, error)

	// CurrentBlockHeight returns the tip height.
	CurrentBlockHeight(ctx context.Context) (int64, error)

	// TxBlockHeight returns the height of the block including the given
	// transaction, or an error if it is not (yet) on chain.
	TxBlockHeight(ctx context.Context, txHash string) (int64, error)

	// Submit builds, signs and submits the planned transaction and returns
	// its hash.
	Submit(ctx context.Context, plan domain.TxPlan) (string, error)
}
