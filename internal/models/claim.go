package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ClaimType distinguishes claims created at contribution close from claims
// created when an expansion window closes.
type ClaimType string

const (
	ClaimTypeStandard  ClaimType = "standard"
	ClaimTypeExpansion ClaimType = "expansion"
)

// ClaimStatus follows available -> pending -> claimed.
type ClaimStatus string

const (
	ClaimStatusAvailable ClaimStatus = "available"
	ClaimStatusPending   ClaimStatus = "pending"
	ClaimStatusClaimed   ClaimStatus = "claimed"
)

// ClaimCalculation records the inputs of a claim amount so it can be audited
// without re-deriving prices.
type ClaimCalculation struct {
	AssetValueAda  decimal.Decimal `json:"asset_value_ada"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
	PriceType      string          `json:"price_type"`
	Decimals       int             `json:"decimals"`
	AssetIDs       []string        `json:"asset_ids"`
	PhaseStart     string          `json:"phase_start,omitempty"`
}

// Claim is a user's entitlement to vault tokens. Only the distribution and
// settlement components mutate it.
type Claim struct {
	Base
	VaultID          string      `gorm:"type:uuid;not null;index" json:"vault_id"`
	UserID           string      `gorm:"type:uuid;not null;index" json:"user_id"`
	TransactionID    string      `gorm:"type:uuid;not null;index" json:"transaction_id"`
	ProposalID       *string     `gorm:"type:uuid;index" json:"proposal_id,omitempty"`
	DistributionTxID *string     `gorm:"type:uuid" json:"distribution_tx_id,omitempty"`
	Type             ClaimType   `gorm:"not null" json:"type"`
	Status           ClaimStatus `gorm:"not null;index" json:"status"`
	Amount           int64       `gorm:"type:bigint;not null" json:"amount"`

	Metadata datatypes.JSONType[ClaimCalculation] `json:"metadata"`
}
