package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultflow/internal/chain"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
	"vaultflow/internal/pricing"
)

// allowedFrom lists, per target status, the statuses a transaction may move
// from. Terminal statuses never appear as a source.
var allowedFrom = map[models.TransactionStatus][]models.TransactionStatus{
	models.TransactionStatusSubmitted: {models.TransactionStatusCreated},
	models.TransactionStatusPending:   {models.TransactionStatusSubmitted},
	models.TransactionStatusConfirmed: {models.TransactionStatusSubmitted, models.TransactionStatusPending},
	models.TransactionStatusFailed:    {models.TransactionStatusCreated, models.TransactionStatusSubmitted, models.TransactionStatusPending},
	models.TransactionStatusStuck:     {models.TransactionStatusSubmitted, models.TransactionStatusPending},
}

// priceFetchLimit bounds concurrent price lookups while locking assets.
const priceFetchLimit = 8

// TransactionOptions tunes polling and the reconciliation sweep.
type TransactionOptions struct {
	PollInterval time.Duration
	StuckAfter   time.Duration
}

// transactionService is the transaction state machine.
type transactionService struct {
	db      *gorm.DB
	indexer chain.Indexer
	prices  pricing.PriceService
	opts    TransactionOptions
	now     func() time.Time
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, indexer chain.Indexer, prices pricing.PriceService, opts TransactionOptions) TransactionServicer {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.StuckAfter <= 0 {
		opts.StuckAfter = 6 * time.Hour
	}
	return &transactionService{
		db:      db,
		indexer: indexer,
		prices:  prices,
		opts:    opts,
		now:     time.Now,
	}
}

// CreateTransaction persists a new transaction in the created status.
func (s *transactionService) CreateTransaction(tx *models.Transaction) (*models.Transaction, error) {
	if tx == nil || tx.Type == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type is required")
	}
	if tx.Amount < 0 || tx.Fee < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount and fee must not be negative")
	}
	tx.Status = models.TransactionStatusCreated
	tx.TxHash = nil

	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetTransaction retrieves a transaction owned by userID.
func (s *transactionService) GetTransaction(userID, id string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// GetTransactionByHash retrieves a transaction by chain hash.
func (s *transactionService) GetTransactionByHash(txHash string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.db.Where("tx_hash = ?", txHash).First(&tx).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tx, nil
}

// MarkSubmitted records the chain hash of an accepted transaction and turns
// its pending asset descriptors into asset rows.
func (s *transactionService) MarkSubmitted(_ context.Context, id, txHash string) (*models.Transaction, error) {
	txHash = strings.ToLower(strings.TrimSpace(txHash))
	if txHash == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "tx hash is required")
	}

	var result models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&result).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if result.Status != models.TransactionStatusCreated {
			if result.TxHash != nil && *result.TxHash == txHash {
				return apperrors.ErrDuplicateSubmission
			}
			return apperrors.ErrInvalidTransition
		}

		now := s.now()
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, models.TransactionStatusCreated).
			Updates(map[string]interface{}{
				"status":       models.TransactionStatusSubmitted,
				"tx_hash":      txHash,
				"submitted_at": now,
			})
		if res.Error != nil {
			if isUniqueConstraintError(res.Error) {
				return apperrors.ErrDuplicateSubmission
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvalidTransition
		}

		result.Status = models.TransactionStatusSubmitted
		result.TxHash = &txHash
		result.SubmittedAt = &now
		return materializeAssets(tx, &result)
	})
	if err != nil {
		return nil, err
	}

	logger.Named("state").Infow("transaction submitted", "transaction_id", id, "tx_hash", txHash)
	return &result, nil
}

// materializeAssets creates pending asset rows from the transaction's
// pending asset descriptors. Only contribute and acquire carry assets.
func materializeAssets(tx *gorm.DB, t *models.Transaction) error {
	if t.VaultID == nil {
		return nil
	}
	origin := models.AssetOriginContributed
	switch t.Type {
	case models.TransactionTypeContribute:
	case models.TransactionTypeAcquire:
		origin = models.AssetOriginAcquired
	default:
		return nil
	}

	addedBy := ""
	if t.UserID != nil {
		addedBy = *t.UserID
	}
	for _, pa := range t.Meta().PendingAssets {
		asset := &models.Asset{
			VaultID:       *t.VaultID,
			TransactionID: t.ID,
			Type:          pa.Type,
			PolicyID:      pa.PolicyID,
			AssetName:     pa.AssetName,
			Quantity:      pa.Quantity,
			Decimals:      pa.Decimals,
			Status:        models.AssetStatusPending,
			Origin:        origin,
			AddedBy:       addedBy,
		}
		if err := tx.Create(asset).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}

// MarkFailed moves a non-terminal transaction to failed and records why.
func (s *transactionService) MarkFailed(_ context.Context, id, reason string) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var t models.Transaction
		if err := tx.Where("id = ?", id).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if t.Status.IsTerminal() {
			return apperrors.ErrInvalidTransition
		}

		meta := t.Meta()
		meta.FailureReason = reason
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, t.Status).
			Updates(map[string]interface{}{
				"status":   models.TransactionStatusFailed,
				"metadata": datatypes.NewJSONType(meta),
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrInvalidTransition
		}
		return releaseClaims(tx, &t)
	})
	if err != nil {
		return err
	}

	logger.Named("state").Warnw("transaction failed", "transaction_id", id, "reason", reason)
	return nil
}

// ApplyStatus moves the transaction identified by txHash to status. The move
// is guarded by the current status, so replays and concurrent deliveries are
// no-ops, and a terminal status is never left.
func (s *transactionService) ApplyStatus(ctx context.Context, txHash string, status models.TransactionStatus) (*TransitionResult, error) {
	log := logger.Named("state")

	current, err := s.GetTransactionByHash(txHash)
	if err != nil {
		return nil, err
	}

	result := &TransitionResult{
		TransactionID:  current.ID,
		TxHash:         txHash,
		PreviousStatus: current.Status,
		Status:         current.Status,
	}
	if current.Status == status {
		return result, nil
	}
	if current.Status.IsTerminal() {
		log.Infow("ignoring transition from terminal status",
			"transaction_id", current.ID, "tx_hash", txHash, "status", current.Status, "requested", status)
		return result, nil
	}
	if !canMove(current.Status, status) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition,
			"cannot move transaction from "+string(current.Status)+" to "+string(status))
	}

	// Prices are fetched before opening the database transaction; only the
	// apply step runs inside it.
	var (
		pending []models.Asset
		adaUSD  *decimal.Decimal
	)
	if status == models.TransactionStatusConfirmed {
		pending, err = s.pendingAssetsWithPrices(ctx, current.ID)
		if err != nil {
			return nil, err
		}
		if len(pending) > 0 {
			adaUSD = fetchAdaPrice(ctx, s.prices)
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status}
		if status == models.TransactionStatusConfirmed {
			updates["confirmed_at"] = s.now()
		}
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status IN ?", current.ID, allowedFrom[status]).
			Updates(updates)
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			// Another delivery won the race.
			return nil
		}
		result.Changed = true
		result.Status = status

		switch status {
		case models.TransactionStatusConfirmed:
			locked, err := lockAssets(tx, pending, s.now())
			if err != nil {
				return err
			}
			result.AssetsLocked = locked
			if locked > 0 && current.VaultID != nil {
				if _, err := recalculateVaultWithDB(tx, *current.VaultID, adaUSD); err != nil {
					return err
				}
			}
			return settleClaims(tx, current)
		case models.TransactionStatusFailed, models.TransactionStatusStuck:
			return releaseClaims(tx, current)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Changed {
		log.Infow("transaction status applied",
			"transaction_id", current.ID, "tx_hash", txHash,
			"from", result.PreviousStatus, "to", result.Status, "assets_locked", result.AssetsLocked)
	}
	return result, nil
}

func canMove(from, to models.TransactionStatus) bool {
	for _, s := range allowedFrom[to] {
		if s == from {
			return true
		}
	}
	return false
}

// pendingAssetsWithPrices loads the transaction's pending assets and fills
// in missing floor/dex prices concurrently. A price that cannot be fetched
// is left as is; the asset still locks.
func (s *transactionService) pendingAssetsWithPrices(ctx context.Context, transactionID string) ([]models.Asset, error) {
	var assets []models.Asset
	if err := s.db.Where("transaction_id = ? AND status = ?", transactionID, models.AssetStatusPending).
		Find(&assets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if s.prices == nil || len(assets) == 0 {
		return assets, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(priceFetchLimit)
	for i := range assets {
		a := &assets[i]
		if a.Type == models.AssetTypeADA || a.UnitPrice().IsPositive() {
			continue
		}
		g.Go(func() error {
			p, err := s.prices.GetTokenPrice(gctx, a.PolicyID, a.AssetName)
			if err != nil {
				logger.Named("state").Warnw("asset price unavailable",
					"asset_id", a.ID, "unit", a.Unit(), "error", err)
				return nil
			}
			if a.Type == models.AssetTypeNFT {
				a.FloorPrice = p
			} else {
				a.DexPrice = p
			}
			return nil
		})
	}
	_ = g.Wait()
	return assets, nil
}

// lockAssets moves each asset pending -> locked. The status predicate makes
// a replay lock nothing.
func lockAssets(tx *gorm.DB, assets []models.Asset, now time.Time) (int64, error) {
	var locked int64
	for _, a := range assets {
		res := tx.Model(&models.Asset{}).
			Where("id = ? AND status = ?", a.ID, models.AssetStatusPending).
			Updates(map[string]interface{}{
				"status":      models.AssetStatusLocked,
				"locked_at":   now,
				"floor_price": a.FloorPrice,
				"dex_price":   a.DexPrice,
			})
		if res.Error != nil {
			return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		locked += res.RowsAffected
	}
	return locked, nil
}

// settleClaims marks the claims paid out by a confirmed claim transaction.
func settleClaims(tx *gorm.DB, t *models.Transaction) error {
	ids := t.Meta().ClaimIDs
	if t.Type != models.TransactionTypeClaim || len(ids) == 0 {
		return nil
	}
	if err := tx.Model(&models.Claim{}).
		Where("id IN ? AND status = ?", ids, models.ClaimStatusPending).
		Update("status", models.ClaimStatusClaimed).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// releaseClaims returns the claims of a failed claim transaction to
// available so they can be built again.
func releaseClaims(tx *gorm.DB, t *models.Transaction) error {
	ids := t.Meta().ClaimIDs
	if t.Type != models.TransactionTypeClaim || len(ids) == 0 {
		return nil
	}
	if err := tx.Model(&models.Claim{}).
		Where("id IN ? AND status = ? AND distribution_tx_id = ?", ids, models.ClaimStatusPending, t.ID).
		Updates(map[string]interface{}{
			"status":             models.ClaimStatusAvailable,
			"distribution_tx_id": nil,
		}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// WaitForTransactionStatus polls until the transaction reaches target,
// reaches a terminal failure, or timeout elapses.
func (s *transactionService) WaitForTransactionStatus(ctx context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(s.opts.PollInterval)
	defer ticker.Stop()

	for {
		var t models.Transaction
		if err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrTransactionNotFound
			}
			if ctx.Err() == nil {
				return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			if t.Status == target {
				return &t, nil
			}
			if t.Status == models.TransactionStatusFailed || t.Status == models.TransactionStatusStuck ||
				(t.Status.IsTerminal() && target != t.Status) {
				return &t, apperrors.WithMessage(apperrors.ErrTransactionFailed,
					"transaction ended in status "+string(t.Status))
			}
		}

		select {
		case <-ctx.Done():
			return nil, apperrors.Wrap(apperrors.ErrWaitTimeout, ctx.Err())
		case <-ticker.C:
		}
	}
}

// isUniqueConstraintError checks if a GORM error is a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // SQLite
		strings.Contains(msg, "duplicate key value violates unique constraint") // PostgreSQL
}
