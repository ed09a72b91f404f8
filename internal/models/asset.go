package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AssetType is the kind of value an asset row holds.
type AssetType string

const (
	AssetTypeADA AssetType = "ada"
	AssetTypeFT  AssetType = "ft"
	AssetTypeNFT AssetType = "nft"
)

// AssetStatus tracks custody of a contributed asset.
type AssetStatus string

const (
	AssetStatusPending  AssetStatus = "pending"
	AssetStatusLocked   AssetStatus = "locked"
	AssetStatusReleased AssetStatus = "released"
)

// AssetOrigin distinguishes contributed assets from ADA sent during the
// acquire phase.
type AssetOrigin string

const (
	AssetOriginContributed AssetOrigin = "contributed"
	AssetOriginAcquired    AssetOrigin = "acquired"
)

// LovelacePerAda is the number of lovelace in one ADA.
const LovelacePerAda = 1_000_000

// Asset is a single contributed or acquired holding. Status moves
// pending -> locked at most once.
type Asset struct {
	Base
	VaultID       string      `gorm:"type:uuid;not null;index" json:"vault_id"`
	TransactionID string      `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Type          AssetType   `gorm:"not null" json:"type"`
	PolicyID      string      `gorm:"index" json:"policy_id"`
	AssetName     string      `json:"asset_name"`
	Quantity      int64       `gorm:"type:bigint;not null" json:"quantity"`
	Decimals      int         `gorm:"not null;default:0" json:"decimals"`
	Status        AssetStatus `gorm:"not null;index" json:"status"`
	Deleted       bool        `gorm:"not null;default:false" json:"deleted"`
	LockedAt      *time.Time  `json:"locked_at,omitempty"`
	Origin        AssetOrigin `gorm:"not null" json:"origin"`
	AddedBy       string      `gorm:"type:uuid" json:"added_by"`

	FloorPrice decimal.Decimal `gorm:"type:numeric(38,12);not null;default:0" json:"floor_price"`
	DexPrice   decimal.Decimal `gorm:"type:numeric(38,12);not null;default:0" json:"dex_price"`
}

// Unit returns the policy id concatenated with the hex asset name, the form
// the indexer uses for asset amounts.
func (a *Asset) Unit() string {
	if a.Type == AssetTypeADA {
		return "lovelace"
	}
	return a.PolicyID + a.AssetName
}

// UnitPrice returns the ADA price of one whole unit: the floor price for
// NFTs and the dex price for fungible tokens.
func (a *Asset) UnitPrice() decimal.Decimal {
	switch a.Type {
	case AssetTypeNFT:
		return a.FloorPrice
	case AssetTypeFT:
		return a.DexPrice
	default:
		return decimal.New(1, 0)
	}
}

// ValueAda returns the ADA-equivalent value of the holding.
func (a *Asset) ValueAda() decimal.Decimal {
	qty := decimal.NewFromInt(a.Quantity)
	switch a.Type {
	case AssetTypeADA:
		return qty.Shift(-6)
	case AssetTypeNFT:
		return a.FloorPrice.Mul(qty)
	case AssetTypeFT:
		return a.DexPrice.Mul(qty.Shift(int32(-a.Decimals)))
	default:
		return decimal.Zero
	}
}
