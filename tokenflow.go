// Package tokenflow orchestrates ERC-20 token payments: it sequences a
// token approval, a payment-contract call and an on-chain confirmation
// wait, and reports a stable success/failure result to the caller.
package tokenflow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tokenflow/tokenflow/clients"
	"github.com/tokenflow/tokenflow/confirm"
	"github.com/tokenflow/tokenflow/logger"
	"github.com/tokenflow/tokenflow/metrics"
	"github.com/tokenflow/tokenflow/notify"
	"github.com/tokenflow/tokenflow/orchestrator"
	"github.com/tokenflow/tokenflow/types"
)

// Orchestrator is the main entry point. It composes the payment flows over
// an external wallet client and confirmation watcher.
type Orchestrator struct {
	service *orchestrator.Service
	wallet  clients.WalletClient
	config  *types.Config

	log      logger.Logger
	metrics  metrics.Recorder
	notifier notify.Notifier
}

// New creates an Orchestrator over the given collaborators.
func New(config *types.Config, wallet clients.WalletClient, watcher confirm.Watcher, opts ...Option) (*Orchestrator, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DefaultTimeout <= 0 {
		config.DefaultTimeout = 30 * time.Second
	}
	if config.ConfirmationTimeout <= 0 {
		config.ConfirmationTimeout = 60 * time.Second
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		wallet: wallet,
		config: config,
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.log == nil {
		o.log = logger.NewZapLogger(config.LogLevel)
	}
	if o.metrics == nil {
		if config.EnableMetrics {
			o.metrics = metrics.NewPrometheusRecorder()
		} else {
			o.metrics = metrics.NoopRecorder{}
		}
	}
	if o.notifier == nil {
		o.notifier = notify.NewLogNotifier(o.log)
	}

	o.service = orchestrator.New(config, wallet, watcher, o.notifier, o.log, o.metrics)
	return o, nil
}

// DefaultConfig returns a configuration with library defaults; the token
// section still has to be filled in by the caller.
func DefaultConfig() *types.Config {
	return &types.Config{
		DefaultTimeout:      30 * time.Second,
		ConfirmationTimeout: 60 * time.Second,
		LogLevel:            "info",
	}
}

// ProcessPayment checks the payer's allowance, tops it up when it falls
// short and executes the payment.
func (o *Orchestrator) ProcessPayment(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return o.service.GuardedPay(ctx, req)
}

// ProcessPaymentWithApproval always runs the approval call before the
// payment.
func (o *Orchestrator) ProcessPaymentWithApproval(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return o.service.PayWithApproval(ctx, req)
}

// ProcessSmartPayment submits a single smart-payment call; the contract
// decides internally whether an approval step is needed.
func (o *Orchestrator) ProcessSmartPayment(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return o.service.PaySmart(ctx, req)
}

// ApproveTokens grants the spender contract an allowance without paying.
func (o *Orchestrator) ApproveTokens(ctx context.Context, walletAddress string, amount decimal.Decimal) *types.PaymentResult {
	return o.service.ApproveOnly(ctx, walletAddress, amount)
}

// ExecutePaymentOnly executes the payment without any approval handling.
func (o *Orchestrator) ExecutePaymentOnly(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return o.service.PayDirect(ctx, req)
}

// CheckAllowance reports whether walletAddress has approved at least amount
// for the spender contract. Inability to verify counts as insufficient.
func (o *Orchestrator) CheckAllowance(ctx context.Context, walletAddress string, amount decimal.Decimal) bool {
	return o.service.CheckAllowance(ctx, walletAddress, amount)
}

// IsProcessing reports whether a flow is currently in flight.
func (o *Orchestrator) IsProcessing() bool {
	return o.service.IsProcessing()
}

// LastError returns the stable error string of the most recent failed flow.
func (o *Orchestrator) LastError() string {
	return o.service.LastError()
}

// Close closes the wallet client connection.
func (o *Orchestrator) Close() {
	if o.wallet != nil {
		o.wallet.Close()
	}
}

// Version information
const Version = "1.0.0"

// DecimalFromString helper function
func DecimalFromString(s string) *decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return &d
}
