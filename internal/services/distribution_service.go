package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultflow/internal/distribution"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
	"vaultflow/internal/pricing"
)

// distributionService closes expansion phases into claims and multipliers.
type distributionService struct {
	db     *gorm.DB
	prices pricing.PriceService
	audit  AuditServicer
}

// NewDistributionService creates a new DistributionServicer.
func NewDistributionService(db *gorm.DB, prices pricing.PriceService, audit AuditServicer) DistributionServicer {
	return &distributionService{db: db, prices: prices, audit: audit}
}

// CloseExpansion converts the contributions locked during an expansion into
// pending claims, then closes the phase and releases the claims. Claims are
// saved before the phase is closed; a crash in between leaves the phase open
// and a retry finds the claims already present.
func (s *distributionService) CloseExpansion(ctx context.Context, proposalID string) (*CloseResult, error) {
	log := logger.Named("distribution")

	var proposal models.Proposal
	if err := s.db.Where("id = ?", proposalID).First(&proposal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProposalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if proposal.Type != models.ProposalTypeExpansion || proposal.Status != models.ProposalStatusActive {
		return nil, apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "proposal is not an active expansion")
	}

	var vault models.Vault
	if err := s.db.Where("id = ?", proposal.VaultID).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVaultNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if vault.Status != models.VaultStatusExpansion {
		return nil, apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "vault is not in expansion")
	}

	cfg := proposal.Expansion.Data()
	refPrice, err := s.referencePrice(ctx, &vault, cfg)
	if err != nil {
		log.Warnw("expansion left open, no reference price", "proposal_id", proposal.ID, "vault_id", vault.ID, "error", err)
		return nil, err
	}

	phaseStart := phaseStartOf(&vault, &proposal)
	assets, err := s.phaseAssets(vault.ID, phaseStart)
	if err != nil {
		return nil, err
	}

	multipliers, err := distribution.GroupMultipliers(assets, refPrice, vault.VTDecimals)
	if err != nil {
		return nil, apperrors.WrapWithMessage(apperrors.ErrPhaseNotClosable, "multipliers cannot be derived", err)
	}

	result := &CloseResult{
		ProposalID:     proposal.ID,
		VaultID:        vault.ID,
		ReferencePrice: refPrice,
		Multipliers:    multipliers,
	}

	// Step one: claims, pending until the phase is closed.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		created, skipped, err := createPhaseClaims(tx, &vault, &proposal, assets, refPrice, phaseStart)
		result.ClaimsCreated = created
		result.ClaimsSkipped = skipped
		return err
	})
	if err != nil {
		return nil, err
	}

	// Step two: close the phase and release the claims.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		merged := distribution.MergeMultipliers(vault.Multipliers.Data(), multipliers)
		res := tx.Model(&models.Vault{}).
			Where("id = ? AND status = ?", vault.ID, models.VaultStatusExpansion).
			Updates(map[string]interface{}{
				"status":                models.VaultStatusLocked,
				"expansion_phase_start": nil,
				"multipliers":           datatypes.NewJSONType(merged),
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "vault left expansion concurrently")
		}

		cfg.CurrentAssetCount = countTokens(assets)
		cfg.CurrentValueAda = distribution.TotalValueAda(assets)
		res = tx.Model(&models.Proposal{}).
			Where("id = ? AND status = ?", proposal.ID, models.ProposalStatusActive).
			Updates(map[string]interface{}{
				"status":    models.ProposalStatusExecuted,
				"expansion": datatypes.NewJSONType(cfg),
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "proposal closed concurrently")
		}

		if err := tx.Model(&models.Claim{}).
			Where("proposal_id = ? AND status = ? AND distribution_tx_id IS NULL", proposal.ID, models.ClaimStatusPending).
			Update("status", models.ClaimStatusAvailable).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Log("", models.AuditActionClosePhase, "proposal", proposal.ID, "", map[string]interface{}{
		"vault_id":        vault.ID,
		"reference_price": refPrice.String(),
		"claims_created":  result.ClaimsCreated,
	})
	log.Infow("expansion closed",
		"proposal_id", proposal.ID, "vault_id", vault.ID,
		"reference_price", refPrice.String(),
		"claims_created", result.ClaimsCreated, "claims_skipped", result.ClaimsSkipped,
		"multipliers", len(multipliers))
	return result, nil
}

// referencePrice is the configured limit price or the vault token's live
// market price. It must be positive.
func (s *distributionService) referencePrice(ctx context.Context, vault *models.Vault, cfg models.ExpansionConfig) (decimal.Decimal, error) {
	var price decimal.Decimal
	switch cfg.PriceType {
	case models.ExpansionPriceLimit:
		price = cfg.LimitPrice
	case models.ExpansionPriceMarket:
		if s.prices == nil {
			return decimal.Zero, apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "market price source not configured")
		}
		p, err := s.prices.GetTokenPrice(ctx, vault.ScriptHash, vault.AssetVaultName)
		if err != nil {
			return decimal.Zero, apperrors.WrapWithMessage(apperrors.ErrPhaseNotClosable, "vault token market price unavailable", err)
		}
		price = p
	default:
		return decimal.Zero, apperrors.WithMessage(apperrors.ErrPhaseNotClosable, "unknown expansion price type")
	}
	if !price.IsPositive() {
		return decimal.Zero, apperrors.WrapWithMessage(apperrors.ErrPhaseNotClosable, "reference price must be positive", distribution.ErrInvalidReferencePrice)
	}
	return price, nil
}

func phaseStartOf(vault *models.Vault, proposal *models.Proposal) time.Time {
	if vault.ExpansionPhaseStart != nil {
		return *vault.ExpansionPhaseStart
	}
	if proposal.StartedAt != nil {
		return *proposal.StartedAt
	}
	return proposal.CreatedAt
}

// phaseAssets returns the contributed assets locked since the phase began.
func (s *distributionService) phaseAssets(vaultID string, since time.Time) ([]models.Asset, error) {
	var assets []models.Asset
	if err := s.db.Where("vault_id = ? AND status = ? AND deleted = ? AND origin = ? AND locked_at >= ?",
		vaultID, models.AssetStatusLocked, false, models.AssetOriginContributed, since).
		Order("locked_at asc").
		Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return assets, nil
}

// createPhaseClaims creates one pending claim per contributing transaction.
// A transaction that already has a claim for this proposal is left alone.
func createPhaseClaims(tx *gorm.DB, vault *models.Vault, proposal *models.Proposal, assets []models.Asset, refPrice decimal.Decimal, phaseStart time.Time) (int, int, error) {
	log := logger.Named("distribution")
	cfg := proposal.Expansion.Data()

	byTx := map[string][]models.Asset{}
	for _, a := range assets {
		byTx[a.TransactionID] = append(byTx[a.TransactionID], a)
	}
	txIDs := make([]string, 0, len(byTx))
	for id := range byTx {
		txIDs = append(txIDs, id)
	}
	sort.Strings(txIDs)

	var created, skipped int
	for _, txID := range txIDs {
		var existing int64
		if err := tx.Model(&models.Claim{}).
			Where("transaction_id = ? AND proposal_id = ?", txID, proposal.ID).
			Count(&existing).Error; err != nil {
			return created, skipped, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if existing > 0 {
			continue
		}

		var source models.Transaction
		if err := tx.Where("id = ?", txID).First(&source).Error; err != nil {
			return created, skipped, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if source.Status != models.TransactionStatusConfirmed || source.UserID == nil {
			log.Warnw("skipping claim for unconfirmed contribution", "transaction_id", txID, "status", source.Status)
			skipped++
			continue
		}

		group := byTx[txID]
		value := distribution.TotalValueAda(group)
		amount, err := distribution.VTAmount(value, refPrice, vault.VTDecimals)
		if err != nil || amount == 0 {
			log.Warnw("skipping zero value claim",
				"transaction_id", txID, "value_ada", value.String(), "reference_price", refPrice.String(), "error", err)
			skipped++
			continue
		}

		assetIDs := make([]string, len(group))
		for i, a := range group {
			assetIDs[i] = a.ID
		}
		proposalID := proposal.ID
		claim := &models.Claim{
			VaultID:       vault.ID,
			UserID:        *source.UserID,
			TransactionID: txID,
			ProposalID:    &proposalID,
			Type:          models.ClaimTypeExpansion,
			Status:        models.ClaimStatusPending,
			Amount:        amount,
			Metadata: datatypes.NewJSONType(models.ClaimCalculation{
				AssetValueAda:  value,
				ReferencePrice: refPrice,
				PriceType:      string(cfg.PriceType),
				Decimals:       vault.VTDecimals,
				AssetIDs:       assetIDs,
				PhaseStart:     phaseStart.UTC().Format(time.RFC3339),
			}),
		}
		if err := tx.Create(claim).Error; err != nil {
			return created, skipped, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		created++
	}
	return created, skipped, nil
}

func countTokens(assets []models.Asset) int {
	n := 0
	for _, a := range assets {
		if a.Type != models.AssetTypeADA {
			n++
		}
	}
	return n
}

// CloseExpiredExpansions closes every active expansion whose window elapsed
// or whose asset cap was reached. Failures are logged and the phase stays
// open for the next run.
func (s *distributionService) CloseExpiredExpansions(ctx context.Context, now time.Time) (int, error) {
	log := logger.Named("distribution")

	var proposals []models.Proposal
	if err := s.db.Where("type = ? AND status = ?", models.ProposalTypeExpansion, models.ProposalStatusActive).
		Find(&proposals).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	closed := 0
	for i := range proposals {
		p := &proposals[i]

		var vault models.Vault
		if err := s.db.Where("id = ?", p.VaultID).First(&vault).Error; err != nil {
			log.Warnw("expansion vault unavailable", "proposal_id", p.ID, "error", err)
			continue
		}
		if vault.Status != models.VaultStatusExpansion {
			continue
		}

		var locked int64
		if err := s.db.Model(&models.Asset{}).
			Where("vault_id = ? AND status = ? AND deleted = ? AND origin = ? AND type <> ? AND locked_at >= ?",
				vault.ID, models.AssetStatusLocked, false, models.AssetOriginContributed, models.AssetTypeADA, phaseStartOf(&vault, p)).
			Count(&locked).Error; err != nil {
			log.Warnw("expansion asset count failed", "proposal_id", p.ID, "error", err)
			continue
		}
		if !p.ExpansionEnded(now, int(locked)) {
			continue
		}

		if _, err := s.CloseExpansion(ctx, p.ID); err != nil {
			log.Warnw("expansion close failed", "proposal_id", p.ID, "error", err)
			continue
		}
		closed++
	}
	return closed, nil
}
