package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// ProposalType identifies the governance action a proposal executes.
type ProposalType string

const (
	ProposalTypeExpansion ProposalType = "expansion"
)

// ProposalStatus tracks whether a proposal is still running.
type ProposalStatus string

const (
	ProposalStatusActive   ProposalStatus = "active"
	ProposalStatusExecuted ProposalStatus = "executed"
	ProposalStatusRejected ProposalStatus = "rejected"
)

// ExpansionPriceType selects the reference price used to convert expansion
// contributions into vault tokens.
type ExpansionPriceType string

const (
	ExpansionPriceLimit  ExpansionPriceType = "limit"
	ExpansionPriceMarket ExpansionPriceType = "market"
)

// ExpansionConfig is the configuration embedded in an expansion proposal.
// The distribution engine reads it and only updates the progress counters.
type ExpansionConfig struct {
	PriceType         ExpansionPriceType `json:"price_type"`
	LimitPrice        decimal.Decimal    `json:"limit_price"`
	Duration          time.Duration      `json:"duration"`
	AssetMax          int                `json:"asset_max"`
	PolicyIDs         []string           `json:"policy_ids,omitempty"`
	CurrentAssetCount int                `json:"current_asset_count"`
	CurrentValueAda   decimal.Decimal    `json:"current_value_ada"`
}

// Proposal is the subset of a governance proposal the settlement engine uses.
type Proposal struct {
	Base
	VaultID   string         `gorm:"type:uuid;not null;index" json:"vault_id"`
	Type      ProposalType   `gorm:"not null" json:"type"`
	Status    ProposalStatus `gorm:"not null;index" json:"status"`
	StartedAt *time.Time     `json:"started_at,omitempty"`

	Expansion datatypes.JSONType[ExpansionConfig] `json:"expansion"`
}

// ExpansionEnded reports whether the expansion window elapsed or its asset
// cap was reached at now.
func (p *Proposal) ExpansionEnded(now time.Time, lockedAssets int) bool {
	cfg := p.Expansion.Data()
	if cfg.AssetMax > 0 && lockedAssets >= cfg.AssetMax {
		return true
	}
	if p.StartedAt == nil || cfg.Duration <= 0 {
		return false
	}
	return !now.Before(p.StartedAt.Add(cfg.Duration))
}
