package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// CallStatus tags a wallet client outcome as success or error.
type CallStatus string

const (
	CallSuccess CallStatus = "success"
	CallError   CallStatus = "error"
)

// CallOutcome is the tagged result returned by a wallet client operation.
// TxHash is expected to be non-empty on success; an empty hash on a
// successful payment call is itself treated as a failure by the
// orchestrator.
type CallOutcome struct {
	Status    CallStatus `json:"status"`
	TxHash    string     `json:"txHash,omitempty"`
	ErrorCode string     `json:"errorCode,omitempty"`
}

// Failed reports whether the outcome carries the error tag.
func (o *CallOutcome) Failed() bool {
	return o == nil || o.Status != CallSuccess
}

// PaymentRequest is the immutable input to every payment flow.
type PaymentRequest struct {
	// ReferenceID is the caller-supplied correlation id embedded in the
	// on-chain payment call for later matching.
	ReferenceID string `json:"referenceId" validate:"required"`

	// Amount in major units of the token (e.g. 1.5 tokens).
	Amount decimal.Decimal `json:"amount"`

	// WalletAddress of the paying account.
	WalletAddress string `json:"walletAddress" validate:"required"`
}

// NewPaymentRequest builds a request, generating a reference id when the
// caller does not supply one.
func NewPaymentRequest(referenceID string, amount decimal.Decimal, walletAddress string) PaymentRequest {
	if referenceID == "" {
		referenceID = uuid.NewString()
	}
	return PaymentRequest{
		ReferenceID:   referenceID,
		Amount:        amount,
		WalletAddress: walletAddress,
	}
}

// Validate checks that the request contains all required fields and a
// positive amount.
func (r *PaymentRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return &FlowError{Code: ErrInvalidRequest, Message: err.Error()}
	}

	if !r.Amount.IsPositive() {
		return &FlowError{
			Code:    ErrInvalidAmount,
			Message: "amount must be greater than zero",
		}
	}

	return nil
}

// PaymentResult is the orchestrator's output for one flow invocation.
// Exactly one of TxHash/Error is meaningful depending on Success.
type PaymentResult struct {
	Success bool   `json:"success"`
	TxHash  string `json:"txHash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TokenConfig holds the fixed token/recipient/contract configuration shared
// by every payment flow.
type TokenConfig struct {
	// TokenAddress is the ERC-20 contract of the payment token.
	TokenAddress string `json:"tokenAddress" validate:"required"`

	// RecipientAddress receives the payment.
	RecipientAddress string `json:"recipientAddress" validate:"required"`

	// SpenderAddress is the payment contract approved to spend the token.
	SpenderAddress string `json:"spenderAddress" validate:"required"`

	// Decimals is the token's decimal precision. Minor-unit conversion
	// scales by 10^Decimals.
	Decimals int `json:"decimals" validate:"gte=0,lte=36"`
}

// Validate checks the token configuration.
func (t *TokenConfig) Validate() error {
	if err := validate.Struct(t); err != nil {
		return &FlowError{Code: ErrConfigError, Message: err.Error()}
	}
	return nil
}

// Config contains global configuration for the orchestrator.
type Config struct {
	Token TokenConfig `json:"token"`

	// DefaultTimeout bounds each wallet client call.
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`

	// ConfirmationTimeout bounds the on-chain confirmation wait.
	ConfirmationTimeout time.Duration `json:"confirmationTimeout,omitempty"`

	// ConfirmationFailureIsFatal escalates a confirmation timeout to a
	// failed flow. Default false: the transaction may still succeed
	// asynchronously and authoritative confirmation belongs to a backend
	// verifier, so the submission is reported as successful.
	ConfirmationFailureIsFatal bool `json:"confirmationFailureIsFatal,omitempty"`

	// RequireApprovalTxHash treats an approval outcome without a
	// transaction hash as a failure, matching the payment flows. Default
	// false: approval-only tolerates a missing hash.
	RequireApprovalTxHash bool `json:"requireApprovalTxHash,omitempty"`

	LogLevel      string `json:"logLevel,omitempty"`
	EnableMetrics bool   `json:"enableMetrics,omitempty"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	return c.Token.Validate()
}

// DefaultTokenDecimals is the precision used when a token config does not
// override it.
const DefaultTokenDecimals = 18
