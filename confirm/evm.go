package confirm

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tokenflow/tokenflow/types"
)

const (
	defaultPollInterval  = 2 * time.Second
	defaultConfirmations = 1
)

// ReceiptBackend is the slice of the Ethereum client the watcher needs.
type ReceiptBackend interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// EVMWatcher polls for a transaction receipt until the required number of
// confirmations is reached or the timeout expires.
type EVMWatcher struct {
	backend       ReceiptBackend
	timeout       time.Duration
	pollInterval  time.Duration
	confirmations uint64
}

var _ Watcher = (*EVMWatcher)(nil)

// NewEVMWatcher dials rpcURL and returns a watcher bounded by timeout.
func NewEVMWatcher(rpcURL string, timeout time.Duration, confirmations uint64) (*EVMWatcher, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}
	return NewEVMWatcherWithBackend(eth, timeout, confirmations), nil
}

// NewEVMWatcherWithBackend wraps an existing backend.
func NewEVMWatcherWithBackend(backend ReceiptBackend, timeout time.Duration, confirmations uint64) *EVMWatcher {
	if confirmations == 0 {
		confirmations = defaultConfirmations
	}
	return &EVMWatcher{
		backend:       backend,
		timeout:       timeout,
		pollInterval:  defaultPollInterval,
		confirmations: confirmations,
	}
}

// WaitForConfirmation implements Watcher.
func (w *EVMWatcher) WaitForConfirmation(ctx context.Context, txHash string) error {
	waitCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	hash := common.HexToHash(txHash)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := w.backend.TransactionReceipt(waitCtx, hash)
		switch {
		case err == nil:
			confirmed, err := w.isConfirmed(waitCtx, receipt)
			if err != nil {
				return err
			}
			if confirmed {
				if receipt.Status != ethtypes.ReceiptStatusSuccessful {
					return &types.FlowError{
						Code:    types.ErrPaymentFailed,
						Message: fmt.Sprintf("transaction %s reverted", txHash),
					}
				}
				return nil
			}
		case errors.Is(err, ethereum.NotFound):
			// not mined yet, keep polling
		default:
			return &types.FlowError{
				Code:    types.ErrConfirmationTimeout,
				Message: fmt.Sprintf("receipt query failed: %v", err),
			}
		}

		select {
		case <-waitCtx.Done():
			return &types.FlowError{
				Code:    types.ErrConfirmationTimeout,
				Message: fmt.Sprintf("transaction %s not confirmed within %s", txHash, w.timeout),
			}
		case <-ticker.C:
		}
	}
}

func (w *EVMWatcher) isConfirmed(ctx context.Context, receipt *ethtypes.Receipt) (bool, error) {
	if w.confirmations <= 1 {
		return true, nil
	}

	head, err := w.backend.BlockNumber(ctx)
	if err != nil {
		return false, &types.FlowError{
			Code:    types.ErrConfirmationTimeout,
			Message: fmt.Sprintf("block number query failed: %v", err),
		}
	}

	depth := new(big.Int).SetUint64(head)
	depth.Sub(depth, receipt.BlockNumber)
	return depth.Uint64()+1 >= w.confirmations, nil
}
