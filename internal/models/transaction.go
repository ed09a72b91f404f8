package models

import (
	"time"

	"gorm.io/datatypes"
)

// TransactionType represents the type of chain transaction
type TransactionType string

const (
	TransactionTypeContribute      TransactionType = "contribute"
	TransactionTypeAcquire         TransactionType = "acquire"
	TransactionTypeClaim           TransactionType = "claim"
	TransactionTypeBurn            TransactionType = "burn"
	TransactionTypeExtractDispatch TransactionType = "extract-dispatch"
	TransactionTypeCreateVault     TransactionType = "create-vault"
)

// TransactionStatus is a state of the internal transaction lifecycle:
// created -> submitted -> pending -> {confirmed | failed | stuck}.
type TransactionStatus string

const (
	TransactionStatusCreated   TransactionStatus = "created"
	TransactionStatusSubmitted TransactionStatus = "submitted"
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusStuck     TransactionStatus = "stuck"
)

// IsTerminal reports whether no further transition may leave the status.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusConfirmed, TransactionStatusFailed, TransactionStatusStuck:
		return true
	}
	return false
}

// PendingAsset describes an asset requested at build time. It becomes an
// Asset row when the transaction is submitted.
type PendingAsset struct {
	Type      AssetType `json:"type"`
	PolicyID  string    `json:"policy_id,omitempty"`
	AssetName string    `json:"asset_name,omitempty"`
	Quantity  int64     `json:"quantity"`
	Decimals  int       `json:"decimals,omitempty"`
}

// TransactionMetadata is the typed JSON payload stored on a transaction.
// Extra holds free-form audit data only.
type TransactionMetadata struct {
	PendingAssets []PendingAsset `json:"pending_assets,omitempty"`
	ClaimIDs      []string       `json:"claim_ids,omitempty"`
	ProposalID    string         `json:"proposal_id,omitempty"`
	FailureReason string         `json:"failure_reason,omitempty"`
	Extra         map[string]any `json:"extra,omitempty"`
}

// Transaction is the internal record of one chain transaction. Rows are
// never deleted; they double as the audit trail.
type Transaction struct {
	Base
	VaultID     *string           `gorm:"type:uuid;index" json:"vault_id,omitempty"`
	UserID      *string           `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Type        TransactionType   `gorm:"not null" json:"type"`
	Status      TransactionStatus `gorm:"not null;index" json:"status"`
	TxHash      *string           `gorm:"uniqueIndex" json:"tx_hash,omitempty"`
	TxIndex     int               `gorm:"not null;default:0" json:"tx_index"`
	Amount      int64             `gorm:"type:bigint;not null;default:0" json:"amount"`
	Fee         int64             `gorm:"type:bigint;not null;default:0" json:"fee"`
	SubmittedAt *time.Time        `json:"submitted_at,omitempty"`
	ConfirmedAt *time.Time        `json:"confirmed_at,omitempty"`

	Metadata datatypes.JSONType[TransactionMetadata] `json:"metadata"`
}

// Meta returns the decoded metadata payload.
func (t *Transaction) Meta() TransactionMetadata {
	return t.Metadata.Data()
}
