package clients

import (
	"context"
	"math/big"

	"github.com/tokenflow/tokenflow/types"
)

// WalletClient is the contract the orchestrator consumes for on-chain token
// operations. Amounts are always minor units. Token, recipient and spender
// addresses are fixed configuration owned by the implementation.
type WalletClient interface {
	// Approve grants the configured spender an allowance of amount.
	Approve(ctx context.Context, amount *big.Int) (*types.CallOutcome, error)

	// Pay executes a direct payment of amount to the configured recipient,
	// embedding referenceID for later matching.
	Pay(ctx context.Context, amount *big.Int, referenceID string) (*types.CallOutcome, error)

	// PaySmart executes a payment where the contract decides internally
	// whether an approval step is needed.
	PaySmart(ctx context.Context, amount *big.Int, referenceID, walletAddress string) (*types.CallOutcome, error)

	// HasSufficientAllowance reports whether walletAddress has approved at
	// least amount for the configured spender.
	HasSufficientAllowance(ctx context.Context, walletAddress string, amount *big.Int) (bool, error)

	Close()
}
