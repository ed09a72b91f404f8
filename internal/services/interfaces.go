package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vaultflow/internal/models"
	"vaultflow/internal/pagination"
	"vaultflow/internal/webhooks"
)

// UserServicer resolves users. Profiles are owned elsewhere; only lookups
// are needed here.
type UserServicer interface {
	GetUserByID(id string) (*models.User, error)
	FindByAddress(address string) (*models.User, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID string, action models.AuditAction, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}

// TransitionResult describes the outcome of one status application.
type TransitionResult struct {
	TransactionID  string                   `json:"transaction_id"`
	TxHash         string                   `json:"tx_hash"`
	PreviousStatus models.TransactionStatus `json:"previous_status"`
	Status         models.TransactionStatus `json:"status"`
	Changed        bool                     `json:"changed"`
	AssetsLocked   int64                    `json:"assets_locked"`
}

// SyncResult summarizes a reconciliation sweep.
type SyncResult struct {
	VaultsChecked int `json:"vaults_checked"`
	Checked       int `json:"checked"`
	Confirmed     int `json:"confirmed"`
	Failed        int `json:"failed"`
	Stuck         int `json:"stuck"`
	Errors        int `json:"errors"`
}

func (r *SyncResult) add(o *SyncResult) {
	r.VaultsChecked += o.VaultsChecked
	r.Checked += o.Checked
	r.Confirmed += o.Confirmed
	r.Failed += o.Failed
	r.Stuck += o.Stuck
	r.Errors += o.Errors
}

// TransactionServicer owns the transaction lifecycle
// created -> submitted -> pending -> {confirmed | failed | stuck}.
type TransactionServicer interface {
	CreateTransaction(tx *models.Transaction) (*models.Transaction, error)
	GetTransaction(userID, id string) (*models.Transaction, error)
	GetTransactionByHash(txHash string) (*models.Transaction, error)
	MarkSubmitted(ctx context.Context, id, txHash string) (*models.Transaction, error)
	MarkFailed(ctx context.Context, id, reason string) error
	ApplyStatus(ctx context.Context, txHash string, status models.TransactionStatus) (*TransitionResult, error)
	WaitForTransactionStatus(ctx context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error)
	SyncVaultTransactions(ctx context.Context, vaultID string) (*SyncResult, error)
	SyncAllVaults(ctx context.Context) (*SyncResult, error)
}

// ValuationServicer recomputes cached vault figures.
type ValuationServicer interface {
	RecalculateVaultValuation(ctx context.Context, vaultID string) (*models.Vault, error)
}

// ContributionInput describes what a user wants to contribute.
type ContributionInput struct {
	Lovelace int64                 `json:"lovelace"`
	Assets   []models.PendingAsset `json:"assets"`
}

// BuildContributionInput identifies the transaction to build and the wallet
// paying for it.
type BuildContributionInput struct {
	TransactionID string
	ChangeAddress string
}

// BuildResult is a transaction countersigned by the admin key, ready for the
// user's wallet.
type BuildResult struct {
	TransactionID string `json:"transaction_id"`
	PresignedTx   string `json:"presigned_tx"`
}

// SubmitInput is a user-signed transaction.
type SubmitInput struct {
	TransactionID string
	Transaction   string
	Signatures    []string
}

// SubmitResult is returned after the network accepted a transaction.
type SubmitResult struct {
	TransactionID string `json:"transaction_id"`
	TxHash        string `json:"tx_hash"`
}

// ComposerServicer assembles, countersigns and submits user transactions.
type ComposerServicer interface {
	CreateContribution(userID, vaultID string, input ContributionInput) (*models.Transaction, error)
	BuildContribution(ctx context.Context, userID string, input BuildContributionInput) (*BuildResult, error)
	BuildClaim(ctx context.Context, userID, claimID, changeAddress string) (*BuildResult, error)
	SubmitTransaction(ctx context.Context, userID string, input SubmitInput) (*SubmitResult, error)
}

// TransitionDetail reports what happened to one transition of a delivery.
type TransitionDetail struct {
	TxHash  string                   `json:"tx_hash"`
	Status  models.TransactionStatus `json:"status"`
	Outcome string                   `json:"outcome"`
	Error   string                   `json:"error,omitempty"`
}

// WebhookResult is the response body for a webhook delivery.
type WebhookResult struct {
	Status  string             `json:"status"`
	Details []TransitionDetail `json:"details"`
}

// WebhookServicer verifies and applies indexer deliveries.
type WebhookServicer interface {
	VerifyAndHandle(ctx context.Context, signatureHeader string, rawBody []byte) (*WebhookResult, error)
	HandleEvent(ctx context.Context, evt *webhooks.Event) (*WebhookResult, error)
}

// ClaimFilter holds optional filter parameters for listing claims.
type ClaimFilter struct {
	Status  *models.ClaimStatus
	VaultID *string
}

// ClaimServicer exposes claims to their owners.
type ClaimServicer interface {
	GetUserClaims(userID string, filter ClaimFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Claim], error)
	GetClaim(userID, claimID string) (*models.Claim, error)
}

// CloseResult summarizes a closed expansion phase.
type CloseResult struct {
	ProposalID     string              `json:"proposal_id"`
	VaultID        string              `json:"vault_id"`
	ReferencePrice decimal.Decimal     `json:"reference_price"`
	ClaimsCreated  int                 `json:"claims_created"`
	ClaimsSkipped  int                 `json:"claims_skipped"`
	Multipliers    []models.Multiplier `json:"multipliers"`
}

// DistributionServicer turns a closed phase into claims and multipliers.
type DistributionServicer interface {
	CloseExpansion(ctx context.Context, proposalID string) (*CloseResult, error)
	CloseExpiredExpansions(ctx context.Context, now time.Time) (int, error)
}
