package clients

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/tokenflow/tokenflow/types"
)

// ----------------- Payment contract ABI -----------------
const paymentABI = `[{
	"inputs":[
	  {"name":"token","type":"address"},
	  {"name":"recipient","type":"address"},
	  {"name":"amount","type":"uint256"},
	  {"name":"reference","type":"string"}
	],
	"name":"pay",
	"outputs":[],
	"stateMutability":"nonpayable",
	"type":"function"
},{
	"inputs":[
	  {"name":"token","type":"address"},
	  {"name":"payer","type":"address"},
	  {"name":"recipient","type":"address"},
	  {"name":"amount","type":"uint256"},
	  {"name":"reference","type":"string"}
	],
	"name":"smartPay",
	"outputs":[],
	"stateMutability":"nonpayable",
	"type":"function"
}]`

// EVMClient implements WalletClient against an Ethereum-compatible chain.
// The orchestrator core never depends on this type directly; it is the
// reference implementation of the external wallet collaborator.
type EVMClient struct {
	eth     *ethclient.Client
	chainID *big.Int
	signer  *ecdsa.PrivateKey

	token     common.Address
	recipient common.Address
	spender   common.Address

	erc20      *erc20Caller
	paymentABI abi.ABI
}

var _ WalletClient = (*EVMClient)(nil)

// NewEVMClient dials rpcURL and prepares contract bindings for the token
// and payment contract in cfg. signerPrivHex is required to broadcast
// transactions; a client without a signer can still answer allowance
// queries.
func NewEVMClient(rpcURL string, chainID *big.Int, cfg types.TokenConfig, signerPrivHex string) (*EVMClient, error) {
	eth, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("ethereum rpc dial: %w", err)
	}

	token, err := parseAddress(cfg.TokenAddress)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("token address: %w", err)
	}
	recipient, err := parseAddress(cfg.RecipientAddress)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("recipient address: %w", err)
	}
	spender, err := parseAddress(cfg.SpenderAddress)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("spender address: %w", err)
	}

	var signer *ecdsa.PrivateKey
	if signerPrivHex != "" {
		signer, err = crypto.HexToECDSA(strings.TrimPrefix(signerPrivHex, "0x"))
		if err != nil {
			eth.Close()
			return nil, fmt.Errorf("invalid signer key: %w", err)
		}
	}

	erc20, err := newERC20Caller(token, eth)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("erc20 binding: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(paymentABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("payment abi: %w", err)
	}

	return &EVMClient{
		eth:        eth,
		chainID:    chainID,
		signer:     signer,
		token:      token,
		recipient:  recipient,
		spender:    spender,
		erc20:      erc20,
		paymentABI: parsed,
	}, nil
}

// Approve implements WalletClient.
func (c *EVMClient) Approve(ctx context.Context, amount *big.Int) (*types.CallOutcome, error) {
	callData, err := c.erc20.PackApprove(c.spender, amount)
	if err != nil {
		return failedOutcome(ErrPackCallDataFailed), nil
	}

	return c.broadcast(ctx, c.token, callData)
}

// Pay implements WalletClient.
func (c *EVMClient) Pay(ctx context.Context, amount *big.Int, referenceID string) (*types.CallOutcome, error) {
	callData, err := c.paymentABI.Pack("pay", c.token, c.recipient, amount, referenceID)
	if err != nil {
		return failedOutcome(ErrPackCallDataFailed), nil
	}

	return c.broadcast(ctx, c.spender, callData)
}

// PaySmart implements WalletClient. The payment contract decides internally
// whether the payer's allowance needs topping up.
func (c *EVMClient) PaySmart(ctx context.Context, amount *big.Int, referenceID, walletAddress string) (*types.CallOutcome, error) {
	payer, err := parseAddress(walletAddress)
	if err != nil {
		return failedOutcome(ErrInvalidAddress), nil
	}

	callData, err := c.paymentABI.Pack("smartPay", c.token, payer, c.recipient, amount, referenceID)
	if err != nil {
		return failedOutcome(ErrPackCallDataFailed), nil
	}

	return c.broadcast(ctx, c.spender, callData)
}

// HasSufficientAllowance implements WalletClient.
func (c *EVMClient) HasSufficientAllowance(ctx context.Context, walletAddress string, amount *big.Int) (bool, error) {
	owner, err := parseAddress(walletAddress)
	if err != nil {
		return false, &types.FlowError{Code: ErrInvalidAddress, Message: err.Error()}
	}

	allowance, err := c.erc20.Allowance(ctx, owner, c.spender)
	if err != nil {
		return false, &types.FlowError{Code: ErrAllowanceQueryFailed, Message: err.Error()}
	}

	return allowance.Cmp(amount) >= 0, nil
}

// broadcast estimates, signs and sends a transaction to the given contract,
// folding each failure into a tagged outcome.
func (c *EVMClient) broadcast(ctx context.Context, to common.Address, callData []byte) (*types.CallOutcome, error) {
	if c.eth == nil {
		return failedOutcome(ErrRPCNotInitialized), nil
	}
	if c.signer == nil {
		return failedOutcome(ErrNoSignerConfigured), nil
	}

	from := crypto.PubkeyToAddress(c.signer.PublicKey)

	gasLimit, err := c.eth.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &to, Data: callData})
	if err != nil {
		return failedOutcome(ErrEstimateGasFailed), nil
	}

	gasPrice, err := c.eth.SuggestGasPrice(ctx)
	if err != nil {
		return failedOutcome(ErrGasPriceFailed), nil
	}

	nonce, err := c.eth.PendingNonceAt(ctx, from)
	if err != nil {
		return failedOutcome(ErrPendingNonceFailed), nil
	}

	tx := ethtypes.NewTransaction(nonce, to, big.NewInt(0), gasLimit, gasPrice, callData)

	signed, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(c.chainID), c.signer)
	if err != nil {
		return failedOutcome(ErrSignTxFailed), nil
	}

	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return failedOutcome(ErrSendTxFailed), nil
	}

	return &types.CallOutcome{
		Status: types.CallSuccess,
		TxHash: signed.Hash().Hex(),
	}, nil
}

func (c *EVMClient) Close() {
	if c.eth != nil {
		c.eth.Close()
	}
}

// ----------------- Helpers -----------------

func failedOutcome(code string) *types.CallOutcome {
	return &types.CallOutcome{Status: types.CallError, ErrorCode: code}
}

func parseAddress(s string) (common.Address, error) {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "0x") || len(t) != 42 {
		return common.Address{}, fmt.Errorf("not a 0x-prefixed 20-byte hex address: %q", s)
	}
	return common.HexToAddress(t), nil
}
