package models

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// VaultStatus is the lifecycle phase of a vault. The phase gates which
// transaction types may be built against it.
type VaultStatus string

const (
	VaultStatusDraft        VaultStatus = "draft"
	VaultStatusContribution VaultStatus = "contribution"
	VaultStatusAcquire      VaultStatus = "acquire"
	VaultStatusLocked       VaultStatus = "locked"
	VaultStatusExpansion    VaultStatus = "expansion"
	VaultStatusFailed       VaultStatus = "failed"
	VaultStatusTerminated   VaultStatus = "terminated"
)

// Multiplier is one row of a vault's multiplier table. A nil AssetName
// applies to every asset under PolicyID at the recorded price.
type Multiplier struct {
	PolicyID   string  `json:"policy_id"`
	AssetName  *string `json:"asset_name"`
	Multiplier int64   `json:"multiplier"`
	// Decimals is the asset's own precision: Multiplier is vault token base
	// units per 10^Decimals asset base units, i.e. per whole asset unit.
	Decimals int `json:"decimals,omitempty"`
}

// Apply returns floor(quantity * Multiplier / 10^Decimals), the vault token
// amount the table grants for quantity asset base units.
func (m Multiplier) Apply(quantity int64) int64 {
	n := new(big.Int).Mul(big.NewInt(quantity), big.NewInt(m.Multiplier))
	n.Quo(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m.Decimals)), nil))
	return n.Int64()
}

// Vault aggregates contributed assets. The cached cost fields are always a
// deterministic function of the vault's currently locked assets and are only
// written by the valuation recompute.
type Vault struct {
	Base
	OwnerID string      `gorm:"type:uuid;index" json:"owner_id"`
	Name    string      `gorm:"not null" json:"name"`
	Status  VaultStatus `gorm:"not null;index" json:"status"`

	// On-chain references
	ContractAddress   string `gorm:"index" json:"contract_address"`
	ScriptHash        string `json:"script_hash"`
	AssetVaultName    string `json:"asset_vault_name"`
	PublicationHash   string `json:"publication_hash"`
	LastUpdateTxHash  string `json:"last_update_tx_hash"`
	LastUpdateTxIndex int    `json:"last_update_tx_index"`

	// Vault token
	VTDecimals        int             `gorm:"not null;default:6" json:"vt_decimals"`
	VTPrice           decimal.Decimal `gorm:"type:numeric(38,12);not null;default:0" json:"vt_price"`
	AcquireReservePct decimal.Decimal `gorm:"type:numeric(10,4);not null;default:0" json:"acquire_reserve_pct"`

	// Cached valuation
	TotalAssetsCostAda     decimal.Decimal `gorm:"type:numeric(38,6);not null;default:0" json:"total_assets_cost_ada"`
	TotalAssetsCostUsd     decimal.Decimal `gorm:"type:numeric(38,6);not null;default:0" json:"total_assets_cost_usd"`
	RequireReservedCostAda decimal.Decimal `gorm:"type:numeric(38,6);not null;default:0" json:"require_reserved_cost_ada"`
	RequireReservedCostUsd decimal.Decimal `gorm:"type:numeric(38,6);not null;default:0" json:"require_reserved_cost_usd"`
	TotalAcquiredValueAda  decimal.Decimal `gorm:"type:numeric(38,6);not null;default:0" json:"total_acquired_value_ada"`

	// Phase timing
	ContributionPhaseStart *time.Time `json:"contribution_phase_start,omitempty"`
	ExpansionPhaseStart    *time.Time `json:"expansion_phase_start,omitempty"`

	Multipliers datatypes.JSONType[[]Multiplier] `json:"multipliers"`
}

// HasChainReferences reports whether the vault carries every on-chain
// reference a contribution transaction needs.
func (v *Vault) HasChainReferences() bool {
	return v.ContractAddress != "" &&
		v.ScriptHash != "" &&
		v.AssetVaultName != "" &&
		v.PublicationHash != "" &&
		v.LastUpdateTxHash != ""
}

// AcceptsContributions reports whether contribute transactions are legal in
// the vault's current phase.
func (v *Vault) AcceptsContributions() bool {
	return v.Status == VaultStatusContribution || v.Status == VaultStatusExpansion
}
