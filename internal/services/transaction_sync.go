package services

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"vaultflow/internal/chain"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
)

// syncConcurrency bounds how many vaults a sweep reconciles at once.
const syncConcurrency = 4

// SyncVaultTransactions reconciles a vault's in-flight transactions with the
// indexer. It backs up the webhook path: anything the webhook missed is
// resolved here through the same ApplyStatus guards.
func (s *transactionService) SyncVaultTransactions(ctx context.Context, vaultID string) (*SyncResult, error) {
	log := logger.Named("sweep")
	result := &SyncResult{VaultsChecked: 1}

	var vault models.Vault
	if err := s.db.Where("id = ?", vaultID).First(&vault).Error; err != nil {
		return nil, apperrors.ErrVaultNotFound
	}

	var inflight []models.Transaction
	if err := s.db.Where("vault_id = ? AND status IN ? AND tx_hash IS NOT NULL", vaultID,
		[]models.TransactionStatus{models.TransactionStatusSubmitted, models.TransactionStatusPending}).
		Order("submitted_at asc").
		Find(&inflight).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(inflight) == 0 {
		return result, nil
	}

	seen := map[string]bool{}
	if vault.ContractAddress != "" {
		history, err := s.indexer.AddressTransactions(ctx, vault.ContractAddress)
		if err != nil {
			log.Warnw("address history unavailable", "vault_id", vaultID, "error", err)
			return nil, apperrors.Wrap(apperrors.ErrGatewayUnavailable, err)
		}
		for _, h := range history {
			seen[h.TxHash] = true
		}
	}

	now := s.now()
	for _, t := range inflight {
		result.Checked++
		hash := *t.TxHash

		stale := t.SubmittedAt != nil && now.Sub(*t.SubmittedAt) > s.opts.StuckAfter
		if !seen[hash] && !stale {
			continue
		}

		info, err := s.indexer.Transaction(ctx, hash)
		var target models.TransactionStatus
		switch {
		case errors.Is(err, chain.ErrNotFound):
			if !stale {
				continue
			}
			target = models.TransactionStatusStuck
		case err != nil:
			result.Errors++
			log.Warnw("transaction lookup failed", "tx_hash", hash, "error", err)
			continue
		case info.Block == "":
			continue
		case info.ValidContract:
			target = models.TransactionStatusConfirmed
		default:
			target = models.TransactionStatusFailed
		}

		applied, err := s.ApplyStatus(ctx, hash, target)
		if err != nil {
			result.Errors++
			log.Warnw("apply status failed", "tx_hash", hash, "status", target, "error", err)
			continue
		}
		if !applied.Changed {
			continue
		}
		switch target {
		case models.TransactionStatusConfirmed:
			result.Confirmed++
			if err := s.db.Model(&models.Transaction{}).Where("id = ?", t.ID).
				Update("tx_index", info.Index).Error; err != nil {
				log.Warnw("recording block index failed", "tx_hash", hash, "error", err)
			}
		case models.TransactionStatusFailed:
			result.Failed++
		case models.TransactionStatusStuck:
			result.Stuck++
		}
	}

	log.Infow("vault reconciled", "vault_id", vaultID,
		"checked", result.Checked, "confirmed", result.Confirmed,
		"failed", result.Failed, "stuck", result.Stuck, "errors", result.Errors)
	return result, nil
}

// SyncAllVaults reconciles every vault with in-flight transactions.
func (s *transactionService) SyncAllVaults(ctx context.Context) (*SyncResult, error) {
	var vaultIDs []string
	if err := s.db.Model(&models.Transaction{}).
		Where("status IN ? AND vault_id IS NOT NULL AND tx_hash IS NOT NULL",
			[]models.TransactionStatus{models.TransactionStatusSubmitted, models.TransactionStatusPending}).
		Distinct().
		Pluck("vault_id", &vaultIDs).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	total := &SyncResult{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(syncConcurrency)
	for _, id := range vaultIDs {
		g.Go(func() error {
			r, err := s.SyncVaultTransactions(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				total.VaultsChecked++
				total.Errors++
				logger.Named("sweep").Warnw("vault sync failed", "vault_id", id, "error", err)
				return nil
			}
			total.add(r)
			return nil
		})
	}
	_ = g.Wait()
	return total, nil
}
