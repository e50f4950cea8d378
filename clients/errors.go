package clients

// Stable error codes reported by wallet client implementations. The
// orchestrator forwards these verbatim to the caller.
const (
	// -----------------------------
	// CONFIGURATION
	// -----------------------------
	ErrRPCNotInitialized  = "rpc_not_initialized"
	ErrNoSignerConfigured = "no_signer_configured"
	ErrInvalidAddress     = "invalid_address"

	// -----------------------------
	// CALL CONSTRUCTION
	// -----------------------------
	ErrPackCallDataFailed = "pack_call_data_failed"
	ErrEstimateGasFailed  = "estimate_gas_failed"
	ErrGasPriceFailed     = "suggest_gas_price_failed"
	ErrPendingNonceFailed = "pending_nonce_failed"

	// -----------------------------
	// SUBMISSION
	// -----------------------------
	ErrSignTxFailed = "sign_tx_failed"
	ErrSendTxFailed = "send_tx_failed"

	// -----------------------------
	// QUERIES
	// -----------------------------
	ErrAllowanceQueryFailed = "allowance_query_failed"
	ErrBalanceQueryFailed   = "balance_query_failed"
)
