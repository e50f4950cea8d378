// Package orchestrator sequences token approval, payment submission and
// on-chain confirmation over external wallet and watcher collaborators.
package orchestrator

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tokenflow/tokenflow/clients"
	"github.com/tokenflow/tokenflow/confirm"
	"github.com/tokenflow/tokenflow/logger"
	"github.com/tokenflow/tokenflow/metrics"
	"github.com/tokenflow/tokenflow/notify"
	"github.com/tokenflow/tokenflow/types"
	"github.com/tokenflow/tokenflow/utils"
)

// Flow names used in logs and metrics.
const (
	FlowApprove         = "approve"
	FlowPay             = "pay"
	FlowPayWithApproval = "pay_with_approval"
	FlowSmartPay        = "smart_pay"
	FlowGuardedPay      = "guarded_pay"
)

// Service runs the payment flows. Every flow goes through the same shape:
// convert, call, normalize error, confirm, report. A notification is
// delivered exactly once per invocation, and the processing flag is restored
// on every exit path.
type Service struct {
	wallet   clients.WalletClient
	watcher  confirm.Watcher
	notifier notify.Notifier
	log      logger.Logger
	metrics  metrics.Recorder
	config   *types.Config

	processing atomic.Bool
	mu         sync.Mutex
	lastError  string
}

// New creates the orchestration service.
func New(
	config *types.Config,
	wallet clients.WalletClient,
	watcher confirm.Watcher,
	notifier notify.Notifier,
	log logger.Logger,
	rec metrics.Recorder,
) *Service {
	return &Service{
		wallet:   wallet,
		watcher:  watcher,
		notifier: notifier,
		log:      log,
		metrics:  rec,
		config:   config,
	}
}

// IsProcessing reports whether a flow is currently in flight on this
// instance.
func (s *Service) IsProcessing() bool {
	return s.processing.Load()
}

// LastError returns the stable error string of the most recent failed flow,
// or empty if the last flow succeeded.
func (s *Service) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// ApproveOnly grants the spender contract an allowance of amount and waits
// for confirmation. A missing transaction hash is tolerated unless
// RequireApprovalTxHash is set; a confirmation failure never flips the
// result.
func (s *Service) ApproveOnly(ctx context.Context, walletAddress string, amount decimal.Decimal) *types.PaymentResult {
	return s.run(ctx, FlowApprove, "Tokens approved", func(ctx context.Context) *types.PaymentResult {
		minor, err := s.convert(amount)
		if err != nil {
			return failFromErr(err)
		}

		txHash, fail := s.submitApproval(ctx, minor)
		if fail != nil {
			return fail
		}

		if txHash == "" {
			if s.config.RequireApprovalTxHash {
				return failResult(types.ErrApprovalFailed)
			}
			s.log.Info("approval accepted without transaction hash", map[string]any{
				"wallet": walletAddress,
			})
			return &types.PaymentResult{Success: true}
		}

		if fail := s.awaitConfirmation(ctx, FlowApprove, txHash); fail != nil {
			return fail
		}

		return &types.PaymentResult{Success: true, TxHash: txHash}
	})
}

// PayDirect executes the payment without a preceding approval step.
func (s *Service) PayDirect(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return s.run(ctx, FlowPay, "Payment successful", func(ctx context.Context) *types.PaymentResult {
		minor, err := s.convertRequest(&req)
		if err != nil {
			return failFromErr(err)
		}

		return s.submitPayment(ctx, FlowPay, minor, req.ReferenceID)
	})
}

// PayWithApproval runs the approval call and, only if it succeeded, the
// payment. The amount is converted once and reused for both sub-calls; an
// approval failure is propagated verbatim and the payment is never invoked.
func (s *Service) PayWithApproval(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return s.run(ctx, FlowPayWithApproval, "Payment successful", func(ctx context.Context) *types.PaymentResult {
		minor, err := s.convertRequest(&req)
		if err != nil {
			return failFromErr(err)
		}

		if _, fail := s.submitApproval(ctx, minor); fail != nil {
			return fail
		}

		return s.submitPayment(ctx, FlowPayWithApproval, minor, req.ReferenceID)
	})
}

// PaySmart submits a single smart-payment call; the contract decides
// internally whether an approval step is needed.
func (s *Service) PaySmart(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return s.run(ctx, FlowSmartPay, "Payment successful", func(ctx context.Context) *types.PaymentResult {
		minor, err := s.convertRequest(&req)
		if err != nil {
			return failFromErr(err)
		}

		callCtx, cancel := s.callContext(ctx)
		defer cancel()

		outcome, err := s.wallet.PaySmart(callCtx, minor, req.ReferenceID, req.WalletAddress)
		if err != nil {
			return s.unexpected(FlowSmartPay, err)
		}

		return s.settleOutcome(ctx, FlowSmartPay, outcome)
	})
}

// GuardedPay checks the payer's allowance first, tops it up with an approval
// call when it falls short, then executes the payment.
func (s *Service) GuardedPay(ctx context.Context, req types.PaymentRequest) *types.PaymentResult {
	return s.run(ctx, FlowGuardedPay, "Payment successful", func(ctx context.Context) *types.PaymentResult {
		minor, err := s.convertRequest(&req)
		if err != nil {
			return failFromErr(err)
		}

		if !s.hasAllowance(ctx, req.WalletAddress, minor) {
			if _, fail := s.submitApproval(ctx, minor); fail != nil {
				return fail
			}
		}

		return s.submitPayment(ctx, FlowGuardedPay, minor, req.ReferenceID)
	})
}

// CheckAllowance reports whether walletAddress has approved at least amount
// for the spender contract. Any failure to verify is treated as
// insufficient; this flow never errors.
func (s *Service) CheckAllowance(ctx context.Context, walletAddress string, amount decimal.Decimal) bool {
	minor, err := s.convert(amount)
	if err != nil {
		return false
	}

	return s.hasAllowance(ctx, walletAddress, minor)
}

// ----------------- flow plumbing -----------------

// run wraps a flow body with processing-state bookkeeping, the single
// per-invocation notification, metrics and logging.
func (s *Service) run(ctx context.Context, flow, successMsg string, fn func(ctx context.Context) *types.PaymentResult) *types.PaymentResult {
	start := time.Now()

	s.processing.Store(true)
	s.setLastError("")
	defer s.processing.Store(false)

	s.log.Debug("flow started", map[string]any{"flow": flow})

	result := fn(ctx)

	outcome := "success"
	if result.Success {
		s.notifier.Success(successMsg)
		s.log.Info("flow succeeded", map[string]any{"flow": flow, "txHash": result.TxHash})
	} else {
		outcome = "failure"
		s.setLastError(result.Error)
		s.notifier.Error(result.Error)
		s.log.Error("flow failed", map[string]any{"flow": flow, "error": result.Error})
	}

	s.metrics.IncCounter(flow, map[string]string{"outcome": outcome})
	s.metrics.ObserveLatency(flow, time.Since(start), nil)

	return result
}

// submitApproval invokes the approval call and normalizes its failure. On
// failure the returned result carries the upstream code, or the
// approval_failed fallback.
func (s *Service) submitApproval(ctx context.Context, minor *big.Int) (string, *types.PaymentResult) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	outcome, err := s.wallet.Approve(callCtx, minor)
	if err != nil {
		return "", s.unexpected(FlowApprove, err)
	}

	if outcome.Failed() {
		code := outcome.ErrorCode
		if code == "" {
			code = types.ErrApprovalFailed
		}
		return "", failResult(code)
	}

	return outcome.TxHash, nil
}

// submitPayment invokes the payment call and settles its outcome. A success
// tag without a transaction hash is itself a failure here, unlike the
// approval-only flow.
func (s *Service) submitPayment(ctx context.Context, flow string, minor *big.Int, referenceID string) *types.PaymentResult {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	outcome, err := s.wallet.Pay(callCtx, minor, referenceID)
	if err != nil {
		return s.unexpected(flow, err)
	}

	return s.settleOutcome(ctx, flow, outcome)
}

// settleOutcome normalizes a payment outcome and runs the confirmation
// policy on success.
func (s *Service) settleOutcome(ctx context.Context, flow string, outcome *types.CallOutcome) *types.PaymentResult {
	if outcome.Failed() {
		code := outcome.ErrorCode
		if code == "" {
			code = types.ErrPaymentFailed
		}
		return failResult(code)
	}

	if outcome.TxHash == "" {
		return failResult(types.MsgNoTxHash)
	}

	if fail := s.awaitConfirmation(ctx, flow, outcome.TxHash); fail != nil {
		return fail
	}

	return &types.PaymentResult{Success: true, TxHash: outcome.TxHash}
}

// awaitConfirmation waits for the transaction to land on-chain. A watcher
// failure is absorbed with a warning unless ConfirmationFailureIsFatal: the
// transaction may still succeed asynchronously and authoritative
// confirmation belongs to a backend verifier.
func (s *Service) awaitConfirmation(ctx context.Context, flow, txHash string) *types.PaymentResult {
	err := s.watcher.WaitForConfirmation(ctx, txHash)
	if err == nil {
		return nil
	}

	if s.config.ConfirmationFailureIsFatal {
		return failResult(types.ErrConfirmationTimeout)
	}

	s.log.Warn("confirmation wait failed, reporting submission as successful", map[string]any{
		"flow":   flow,
		"txHash": txHash,
		"error":  err.Error(),
	})
	return nil
}

func (s *Service) hasAllowance(ctx context.Context, walletAddress string, minor *big.Int) bool {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	ok, err := s.wallet.HasSufficientAllowance(callCtx, walletAddress, minor)
	if err != nil {
		// fail closed: inability to verify is treated as insufficient
		s.log.Warn("allowance check failed", map[string]any{
			"wallet": walletAddress,
			"error":  err.Error(),
		})
		return false
	}

	return ok
}

func (s *Service) convertRequest(req *types.PaymentRequest) (*big.Int, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.convert(req.Amount)
}

func (s *Service) convert(amount decimal.Decimal) (*big.Int, error) {
	decimals := s.config.Token.Decimals
	if decimals == 0 {
		decimals = types.DefaultTokenDecimals
	}
	return utils.ToMinorUnits(amount, decimals)
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.DefaultTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.DefaultTimeout)
}

func (s *Service) unexpected(flow string, err error) *types.PaymentResult {
	s.log.Error("wallet client fault", map[string]any{"flow": flow, "error": err.Error()})
	return failResult(err.Error())
}

func (s *Service) setLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func failResult(errStr string) *types.PaymentResult {
	return &types.PaymentResult{Success: false, Error: errStr}
}

// failFromErr keeps the stable code of a tagged error, falling back to the
// raw message for anything else.
func failFromErr(err error) *types.PaymentResult {
	var fe *types.FlowError
	if errors.As(err, &fe) {
		return failResult(fe.Code)
	}
	return failResult(err.Error())
}
