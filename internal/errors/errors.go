// Package errors provides the HTTP-facing error types for the vaultflow API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
// Typed chain errors travel in Internal so callers can still reach their
// structured fields with errors.As.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target is an AppError with the same code, so sentinels
// can be matched after Wrap or WithMessage.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// WrapWithMessage combines Wrap and WithMessage.
func WrapWithMessage(sentinel *AppError, message string, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized            = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden               = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrChangeAddressMismatch   = &AppError{Code: "CHANGE_ADDRESS_MISMATCH", Message: "Change address does not match the wallet on file for this user", StatusCode: http.StatusForbidden}
	ErrInvalidWebhookSignature = &AppError{Code: "INVALID_WEBHOOK_SIGNATURE", Message: "Webhook signature verification failed", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Vault errors.
var (
	ErrVaultNotFound      = &AppError{Code: "VAULT_NOT_FOUND", Message: "Vault not found", StatusCode: http.StatusNotFound}
	ErrVaultMisconfigured = &AppError{Code: "VAULT_MISCONFIGURED", Message: "Vault is missing required on-chain references", StatusCode: http.StatusUnprocessableEntity}
	ErrVaultPhaseInvalid  = &AppError{Code: "VAULT_PHASE_INVALID", Message: "Operation is not allowed in the vault's current phase", StatusCode: http.StatusConflict}
)

// Transaction errors.
var (
	ErrTransactionNotFound    = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
	ErrInvalidTransactionType = &AppError{Code: "INVALID_TRANSACTION_TYPE", Message: "Unsupported transaction type", StatusCode: http.StatusBadRequest}
	ErrInvalidTransition      = &AppError{Code: "INVALID_STATUS_TRANSITION", Message: "Transaction cannot move to the requested status", StatusCode: http.StatusConflict}
	ErrDuplicateSubmission    = &AppError{Code: "DUPLICATE_SUBMISSION", Message: "A transaction with this hash was already submitted", StatusCode: http.StatusConflict}
	ErrTransactionFailed      = &AppError{Code: "TRANSACTION_FAILED", Message: "Transaction failed on chain", StatusCode: http.StatusConflict}
	ErrWaitTimeout            = &AppError{Code: "WAIT_TIMEOUT", Message: "Timed out waiting for transaction status", StatusCode: http.StatusGatewayTimeout}
)

// Chain gateway errors. Messages are written for the end user; the typed
// chain error is kept as Internal.
var (
	ErrInsufficientBalance = &AppError{Code: "INSUFFICIENT_BALANCE", Message: "Insufficient balance to cover the contribution and network fees", StatusCode: http.StatusBadRequest}
	ErrInsufficientAssets  = &AppError{Code: "INSUFFICIENT_ASSETS", Message: "Wallet does not hold the requested assets", StatusCode: http.StatusBadRequest}
	ErrUTXOLimitExceeded   = &AppError{Code: "UTXO_LIMIT_EXCEEDED", Message: "Requested assets are spread over too many wallet outputs; consolidate your wallet and retry", StatusCode: http.StatusBadRequest}
	ErrStaleUTXO           = &AppError{Code: "STALE_UTXO", Message: "Wallet outputs changed since the transaction was built; refresh your wallet and retry", StatusCode: http.StatusConflict}
	ErrScriptValidation    = &AppError{Code: "SCRIPT_VALIDATION_FAILED", Message: "The vault contract rejected this transaction", StatusCode: http.StatusUnprocessableEntity}
	ErrTxTooLarge          = &AppError{Code: "TX_TOO_LARGE", Message: "Transaction exceeds the maximum allowed size; contribute fewer assets at once", StatusCode: http.StatusUnprocessableEntity}
	ErrTxRejected          = &AppError{Code: "TX_REJECTED", Message: "The network rejected the transaction", StatusCode: http.StatusUnprocessableEntity}
	ErrGatewayUnavailable  = &AppError{Code: "GATEWAY_UNAVAILABLE", Message: "Transaction service is unavailable; retry shortly", StatusCode: http.StatusBadGateway}
)

// Claim and distribution errors.
var (
	ErrClaimNotFound     = &AppError{Code: "CLAIM_NOT_FOUND", Message: "Claim not found", StatusCode: http.StatusNotFound}
	ErrClaimNotAvailable = &AppError{Code: "CLAIM_NOT_AVAILABLE", Message: "Claim is not available", StatusCode: http.StatusConflict}
	ErrProposalNotFound  = &AppError{Code: "PROPOSAL_NOT_FOUND", Message: "Proposal not found", StatusCode: http.StatusNotFound}
	ErrPhaseNotClosable  = &AppError{Code: "PHASE_NOT_CLOSABLE", Message: "Phase cannot be closed in its current state", StatusCode: http.StatusConflict}
)
