package types

// FlowError is the tagged error type surfaced by the orchestrator. Code is a
// short, stable string the calling UI can map to localized messages; Message
// is for humans and logs.
type FlowError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

// Stable error codes. Fallback literals are used verbatim when the wallet
// client reports a failure without a code of its own.
const (
	ErrInvalidAmount       = "invalid_amount"
	ErrInvalidRequest      = "invalid_request"
	ErrApprovalFailed      = "approval_failed"
	ErrPaymentFailed       = "payment_failed"
	ErrConfirmationTimeout = "confirmation_timeout"
	ErrConfigError         = "config_error"
	ErrUnexpectedError     = "unexpected_error"
)

// MsgNoTxHash is reported when a payment call succeeds without returning a
// transaction hash.
const MsgNoTxHash = "No transaction ID received from payment"
