package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
	"vaultflow/internal/pricing"
)

var hundred = decimal.NewFromInt(100)

// valuationService recomputes the cached cost figures of a vault.
type valuationService struct {
	db     *gorm.DB
	prices pricing.PriceService
}

// NewValuationService creates a new ValuationServicer.
func NewValuationService(db *gorm.DB, prices pricing.PriceService) ValuationServicer {
	return &valuationService{db: db, prices: prices}
}

// RecalculateVaultValuation recomputes the vault's cached figures from its
// full set of locked assets.
func (s *valuationService) RecalculateVaultValuation(ctx context.Context, vaultID string) (*models.Vault, error) {
	adaUSD := fetchAdaPrice(ctx, s.prices)

	var vault *models.Vault
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		vault, err = recalculateVaultWithDB(tx, vaultID, adaUSD)
		return err
	})
	if err != nil {
		return nil, err
	}
	return vault, nil
}

// fetchAdaPrice returns nil when the price is unavailable; USD figures are
// then left as they were.
func fetchAdaPrice(ctx context.Context, prices pricing.PriceService) *decimal.Decimal {
	if prices == nil {
		return nil
	}
	p, err := prices.GetAdaPrice(ctx)
	if err != nil || !p.IsPositive() {
		logger.Named("valuation").Warnw("ada price unavailable, keeping usd figures", "error", err)
		return nil
	}
	return &p
}

// recalculateVaultWithDB recomputes the vault inside tx. The result depends
// only on the locked asset set, so concurrent or repeated calls converge.
func recalculateVaultWithDB(tx *gorm.DB, vaultID string, adaUSD *decimal.Decimal) (*models.Vault, error) {
	var vault models.Vault
	if err := tx.Where("id = ?", vaultID).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVaultNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var locked []models.Asset
	if err := tx.Where("vault_id = ? AND status = ? AND deleted = ?", vaultID, models.AssetStatusLocked, false).
		Find(&locked).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	contributed := decimal.Zero
	acquired := decimal.Zero
	for i := range locked {
		switch locked[i].Origin {
		case models.AssetOriginContributed:
			contributed = contributed.Add(locked[i].ValueAda())
		case models.AssetOriginAcquired:
			acquired = acquired.Add(locked[i].ValueAda())
		}
	}

	updates := map[string]interface{}{
		"total_assets_cost_ada":     contributed,
		"require_reserved_cost_ada": contributed.Mul(vault.AcquireReservePct).Div(hundred),
		"total_acquired_value_ada":  acquired,
	}
	if adaUSD != nil {
		usd := contributed.Mul(*adaUSD)
		updates["total_assets_cost_usd"] = usd
		updates["require_reserved_cost_usd"] = usd.Mul(vault.AcquireReservePct).Div(hundred)
	}

	if err := tx.Model(&vault).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := tx.Where("id = ?", vaultID).First(&vault).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &vault, nil
}
