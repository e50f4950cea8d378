package clients

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokenflow/tokenflow/types"
)

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("0x1111111111111111111111111111111111111111")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x1111111111111111111111111111111111111111"), addr)

	for _, s := range []string{"", "ETH", "1111111111111111111111111111111111111111", "0x1234"} {
		_, err := parseAddress(s)
		require.Error(t, err, "input %q", s)
	}
}

func TestERC20PackApprove(t *testing.T) {
	caller, err := newERC20Caller(common.HexToAddress("0x2222222222222222222222222222222222222222"), nil)
	require.NoError(t, err)

	spender := common.HexToAddress("0x4444444444444444444444444444444444444444")
	amount := big.NewInt(1_000_000)

	data, err := caller.PackApprove(spender, amount)
	require.NoError(t, err)

	// 4-byte selector + two 32-byte words
	require.Len(t, data, 4+32+32)

	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	require.NoError(t, err)
	assert.Equal(t, parsed.Methods["approve"].ID, data[:4])
}

func TestPaymentABIPacksReference(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(paymentABI))
	require.NoError(t, err)

	data, err := parsed.Pack("pay",
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(42),
		"order-123",
	)
	require.NoError(t, err)
	assert.Equal(t, parsed.Methods["pay"].ID, data[:4])

	_, err = parsed.Pack("smartPay",
		common.HexToAddress("0x2222222222222222222222222222222222222222"),
		common.HexToAddress("0x1111111111111111111111111111111111111111"),
		common.HexToAddress("0x3333333333333333333333333333333333333333"),
		big.NewInt(42),
		"order-123",
	)
	require.NoError(t, err)
}

func TestFailedOutcome(t *testing.T) {
	outcome := failedOutcome(ErrSendTxFailed)
	assert.True(t, outcome.Failed())
	assert.Equal(t, ErrSendTxFailed, outcome.ErrorCode)
	assert.Equal(t, types.CallError, outcome.Status)
	assert.Empty(t, outcome.TxHash)
}
