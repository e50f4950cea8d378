package clients

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

const erc20ABI = `[{
	"inputs":[
	  {"name":"spender","type":"address"},
	  {"name":"amount","type":"uint256"}
	],
	"name":"approve",
	"outputs":[{"name":"","type":"bool"}],
	"stateMutability":"nonpayable",
	"type":"function"
},{
	"inputs":[
	  {"name":"owner","type":"address"},
	  {"name":"spender","type":"address"}
	],
	"name":"allowance",
	"outputs":[{"name":"","type":"uint256"}],
	"stateMutability":"view",
	"type":"function"
},{
	"inputs":[{"name":"owner","type":"address"}],
	"name":"balanceOf",
	"outputs":[{"name":"","type":"uint256"}],
	"stateMutability":"view",
	"type":"function"
}]`

// erc20Caller wraps the minimal ERC-20 surface the wallet client needs.
type erc20Caller struct {
	token common.Address
	abi   abi.ABI
	eth   *ethclient.Client
}

func newERC20Caller(token common.Address, eth *ethclient.Client) (*erc20Caller, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, err
	}
	return &erc20Caller{token: token, abi: parsed, eth: eth}, nil
}

func (e *erc20Caller) PackApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return e.abi.Pack("approve", spender, amount)
}

func (e *erc20Caller) Allowance(ctx context.Context, owner, spender common.Address) (*big.Int, error) {
	return e.callUint256(ctx, "allowance", owner, spender)
}

func (e *erc20Caller) BalanceOf(ctx context.Context, owner common.Address) (*big.Int, error) {
	return e.callUint256(ctx, "balanceOf", owner)
}

func (e *erc20Caller) callUint256(ctx context.Context, method string, args ...interface{}) (*big.Int, error) {
	callData, err := e.abi.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	out, err := e.eth.CallContract(ctx, ethereum.CallMsg{To: &e.token, Data: callData}, nil)
	if err != nil {
		return nil, err
	}

	results, err := e.abi.Unpack(method, out)
	if err != nil {
		return nil, err
	}
	if len(results) != 1 {
		return nil, fmt.Errorf("%s: unexpected result arity %d", method, len(results))
	}

	value, ok := results[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected result type %T", method, results[0])
	}
	return value, nil
}
