package confirm

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenflow/types"
)

type fakeBackend struct {
	receipt    *ethtypes.Receipt
	receiptErr error
	head       uint64
	headErr    error
	calls      int
}

func (f *fakeBackend) TransactionReceipt(context.Context, common.Hash) (*ethtypes.Receipt, error) {
	f.calls++
	return f.receipt, f.receiptErr
}

func (f *fakeBackend) BlockNumber(context.Context) (uint64, error) {
	return f.head, f.headErr
}

const testTxHash = "0x6b2a1f9e4d3c8b7a6f5e4d3c2b1a0f9e8d7c6b5a4f3e2d1c0b9a8f7e6d5c4b3a"

func TestWaitForConfirmation_MinedAndSuccessful(t *testing.T) {
	backend := &fakeBackend{
		receipt: &ethtypes.Receipt{
			Status:      ethtypes.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
		},
	}
	w := NewEVMWatcherWithBackend(backend, time.Second, 1)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.calls)
}

func TestWaitForConfirmation_Reverted(t *testing.T) {
	backend := &fakeBackend{
		receipt: &ethtypes.Receipt{
			Status:      ethtypes.ReceiptStatusFailed,
			BlockNumber: big.NewInt(100),
		},
	}
	w := NewEVMWatcherWithBackend(backend, time.Second, 1)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.Error(t, err)

	var fe *types.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrPaymentFailed, fe.Code)
}

func TestWaitForConfirmation_TimesOutWhileUnmined(t *testing.T) {
	backend := &fakeBackend{receiptErr: ethereum.NotFound}
	w := NewEVMWatcherWithBackend(backend, 50*time.Millisecond, 1)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.Error(t, err)

	var fe *types.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrConfirmationTimeout, fe.Code)
}

func TestWaitForConfirmation_BackendFault(t *testing.T) {
	backend := &fakeBackend{receiptErr: errors.New("rpc down")}
	w := NewEVMWatcherWithBackend(backend, time.Second, 1)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.Error(t, err)

	var fe *types.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrConfirmationTimeout, fe.Code)
}

func TestWaitForConfirmation_RequiredDepthReached(t *testing.T) {
	backend := &fakeBackend{
		receipt: &ethtypes.Receipt{
			Status:      ethtypes.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
		},
		head: 102,
	}
	w := NewEVMWatcherWithBackend(backend, time.Second, 3)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.NoError(t, err)
}

func TestWaitForConfirmation_RequiredDepthNotReached(t *testing.T) {
	backend := &fakeBackend{
		receipt: &ethtypes.Receipt{
			Status:      ethtypes.ReceiptStatusSuccessful,
			BlockNumber: big.NewInt(100),
		},
		head: 100,
	}
	w := NewEVMWatcherWithBackend(backend, 50*time.Millisecond, 3)

	err := w.WaitForConfirmation(context.Background(), testTxHash)
	require.Error(t, err)

	var fe *types.FlowError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, types.ErrConfirmationTimeout, fe.Code)
}

func TestNoopWatcher(t *testing.T) {
	require.NoError(t, NoopWatcher{}.WaitForConfirmation(context.Background(), testTxHash))
}
