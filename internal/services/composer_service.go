package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultflow/internal/chain"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
	"vaultflow/internal/utxo"
)

var policyIDPattern = regexp.MustCompile(`^[0-9a-f]{56}$`)

// ComposerConfig holds the protocol parameters the composer builds with.
type ComposerConfig struct {
	AdminAddress        string
	ProtocolFeeLovelace int64
	MinReserveLovelace  int64
	MaxContribUTXOs     int
	MinUTXOLovelace     int64
	ValidityWindow      time.Duration
	ReceiptAssetName    string
}

// composerService assembles vault transactions and countersigns them with
// the admin key.
type composerService struct {
	db      *gorm.DB
	builder chain.Builder
	indexer chain.Indexer
	signer  chain.Signer
	txSvc   TransactionServicer
	users   UserServicer
	audit   AuditServicer
	cfg     ComposerConfig
	now     func() time.Time
}

// NewComposerService creates a new ComposerServicer.
func NewComposerService(db *gorm.DB, builder chain.Builder, indexer chain.Indexer, signer chain.Signer, txSvc TransactionServicer, users UserServicer, audit AuditServicer, cfg ComposerConfig) ComposerServicer {
	if cfg.ValidityWindow <= 0 {
		cfg.ValidityWindow = 2 * time.Hour
	}
	return &composerService{
		db:      db,
		builder: builder,
		indexer: indexer,
		signer:  signer,
		txSvc:   txSvc,
		users:   users,
		audit:   audit,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CreateContribution records the user's intent to contribute and returns
// the created transaction. Nothing touches the chain yet.
func (s *composerService) CreateContribution(userID, vaultID string, input ContributionInput) (*models.Transaction, error) {
	if input.Lovelace < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "lovelace must not be negative")
	}
	if input.Lovelace == 0 && len(input.Assets) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "contribution must carry lovelace or assets")
	}
	for _, a := range input.Assets {
		if err := validatePendingAsset(a); err != nil {
			return nil, err
		}
	}

	vault, err := s.loadVault(vaultID)
	if err != nil {
		return nil, err
	}
	if !vault.AcceptsContributions() {
		return nil, apperrors.ErrVaultPhaseInvalid
	}
	if vault.Status == models.VaultStatusExpansion {
		if err := s.checkExpansionWhitelist(vault.ID, input.Assets); err != nil {
			return nil, err
		}
	}

	pending := make([]models.PendingAsset, 0, len(input.Assets)+1)
	if input.Lovelace > 0 {
		pending = append(pending, models.PendingAsset{Type: models.AssetTypeADA, Quantity: input.Lovelace, Decimals: 6})
	}
	pending = append(pending, input.Assets...)

	tx := &models.Transaction{
		VaultID:  &vault.ID,
		UserID:   &userID,
		Type:     models.TransactionTypeContribute,
		Amount:   input.Lovelace,
		Fee:      s.cfg.ProtocolFeeLovelace,
		Metadata: datatypes.NewJSONType(models.TransactionMetadata{PendingAssets: pending}),
	}
	created, err := s.txSvc.CreateTransaction(tx)
	if err != nil {
		return nil, err
	}

	s.audit.Log(userID, models.AuditActionCreate, "contribution", created.ID, "", map[string]interface{}{
		"vault_id": vault.ID,
		"lovelace": input.Lovelace,
		"assets":   len(input.Assets),
	})
	return created, nil
}

func validatePendingAsset(a models.PendingAsset) error {
	switch a.Type {
	case models.AssetTypeFT, models.AssetTypeNFT:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset type must be ft or nft")
	}
	if !policyIDPattern.MatchString(a.PolicyID) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "policy_id must be 56 lowercase hex characters")
	}
	if a.Quantity <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "asset quantity must be positive")
	}
	if a.Type == models.AssetTypeNFT && a.Quantity != 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "nft quantity must be 1")
	}
	return nil
}

// checkExpansionWhitelist rejects assets outside the active expansion's
// policy list. An empty list accepts every policy.
func (s *composerService) checkExpansionWhitelist(vaultID string, assets []models.PendingAsset) error {
	var proposal models.Proposal
	err := s.db.Where("vault_id = ? AND type = ? AND status = ?",
		vaultID, models.ProposalTypeExpansion, models.ProposalStatusActive).
		Order("created_at desc").First(&proposal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.WithMessage(apperrors.ErrVaultPhaseInvalid, "vault has no active expansion")
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	allowed := proposal.Expansion.Data().PolicyIDs
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		set[p] = true
	}
	for _, a := range assets {
		if !set[a.PolicyID] {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "policy "+a.PolicyID+" is not accepted in this expansion")
		}
	}
	return nil
}

// BuildContribution assembles the contribution transaction, has the builder
// balance it and countersigns it with the admin key.
func (s *composerService) BuildContribution(ctx context.Context, userID string, input BuildContributionInput) (*BuildResult, error) {
	log := logger.Named("composer")

	tx, err := s.txSvc.GetTransaction(userID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.Type != models.TransactionTypeContribute {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if tx.Status != models.TransactionStatusCreated {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "transaction was already built and submitted")
	}

	// Nothing is read from the chain or written before the change address
	// is proven to belong to the owner.
	if err := s.checkChangeAddress(userID, input.ChangeAddress); err != nil {
		log.Warnw("change address mismatch", "user_id", userID, "transaction_id", tx.ID)
		return nil, err
	}

	if tx.VaultID == nil {
		return nil, s.fail(ctx, tx.ID, apperrors.ErrVaultMisconfigured)
	}
	vault, err := s.loadVault(*tx.VaultID)
	if err != nil {
		return nil, s.fail(ctx, tx.ID, err)
	}
	if !vault.HasChainReferences() {
		return nil, s.fail(ctx, tx.ID, apperrors.ErrVaultMisconfigured)
	}
	if !vault.AcceptsContributions() {
		return nil, s.fail(ctx, tx.ID, apperrors.ErrVaultPhaseInvalid)
	}

	meta := tx.Meta()
	var tokens []models.PendingAsset
	for _, a := range meta.PendingAssets {
		if a.Type != models.AssetTypeADA {
			tokens = append(tokens, a)
		}
	}

	wallet, err := s.indexer.AddressUTXOs(ctx, input.ChangeAddress)
	if err != nil {
		return nil, s.fail(ctx, tx.ID, translateChainError(err))
	}
	selected, err := s.selectInputs(wallet, tx.Amount+s.cfg.MinReserveLovelace+tx.Fee, tokens)
	if err != nil {
		// A retry needs a fresh contribution once the wallet is topped up.
		log.Infow("contribution input selection failed", "transaction_id", tx.ID, "vault_id", vault.ID, "error", err)
		return nil, s.fail(ctx, tx.ID, err)
	}

	spec := s.contributionSpec(vault, tx, input.ChangeAddress, tokens, selected)
	presigned, err := s.buildAndSign(ctx, spec)
	if err != nil {
		log.Warnw("contribution build failed", "transaction_id", tx.ID, "vault_id", vault.ID, "error", err)
		return nil, s.fail(ctx, tx.ID, err)
	}

	s.audit.Log(userID, models.AuditActionBuild, "contribution", tx.ID, "", map[string]interface{}{
		"vault_id": vault.ID,
		"utxos":    len(selected),
	})
	log.Infow("contribution built", "transaction_id", tx.ID, "vault_id", vault.ID, "utxos", len(selected))
	return &BuildResult{TransactionID: tx.ID, PresignedTx: presigned}, nil
}

// selectInputs picks wallet outputs holding the tokens, then tops up with
// the largest remaining outputs until needLovelace is covered.
func (s *composerService) selectInputs(wallet []chain.UTXO, needLovelace int64, tokens []models.PendingAsset) ([]chain.UTXO, error) {
	if len(wallet) == 0 {
		return nil, apperrors.WrapWithMessage(apperrors.ErrInsufficientBalance, "wallet holds no spendable outputs", utxo.ErrNoUTXOs)
	}

	var selected []chain.UTXO
	if len(tokens) > 0 {
		reqs := make([]utxo.Requirement, len(tokens))
		for i, a := range tokens {
			reqs[i] = utxo.Requirement{PolicyID: a.PolicyID, AssetName: a.AssetName, Quantity: a.Quantity}
		}
		var err error
		selected, err = utxo.SelectForAssets(wallet, reqs, utxo.Options{
			MaxUTXOs:    s.cfg.MaxContribUTXOs,
			MinLovelace: s.cfg.MinUTXOLovelace,
		})
		if err != nil {
			return nil, translateSelectionError(err)
		}
	}

	var have int64
	picked := make(map[string]bool, len(selected))
	for _, u := range selected {
		have += u.Lovelace()
		picked[u.Ref()] = true
	}
	if have < needLovelace {
		rest := make([]chain.UTXO, 0, len(wallet))
		for _, u := range wallet {
			if !picked[u.Ref()] {
				rest = append(rest, u)
			}
		}
		topUp, err := utxo.SelectForLovelace(rest, needLovelace-have)
		if err != nil {
			var ib *utxo.InsufficientBalanceError
			if errors.As(err, &ib) || errors.Is(err, utxo.ErrNoUTXOs) {
				return nil, translateSelectionError(&utxo.InsufficientBalanceError{
					Required:  needLovelace,
					Available: have + sumLovelace(rest),
				})
			}
			return nil, translateSelectionError(err)
		}
		selected = append(selected, topUp...)
	}

	if s.cfg.MaxContribUTXOs > 0 && len(selected) > s.cfg.MaxContribUTXOs {
		return nil, translateSelectionError(&utxo.LimitExceededError{Needed: len(selected), Max: s.cfg.MaxContribUTXOs})
	}
	return selected, nil
}

func sumLovelace(utxos []chain.UTXO) int64 {
	var total int64
	for _, u := range utxos {
		total += u.Lovelace()
	}
	return total
}

// contributionSpec lays out the contribution: a receipt mint, the vault
// output with the owner datum, an optional fee output and the reference
// inputs the vault script reads.
func (s *composerService) contributionSpec(vault *models.Vault, tx *models.Transaction, changeAddress string, tokens []models.PendingAsset, selected []chain.UTXO) chain.TxSpec {
	kind := "lovelace"
	if len(tokens) > 0 {
		kind = "asset"
	}

	assets := make([]chain.OutputAsset, 0, len(tokens)+1)
	assets = append(assets, chain.OutputAsset{
		PolicyID:  vault.ScriptHash,
		AssetName: chain.HexName(s.cfg.ReceiptAssetName),
		Quantity:  1,
	})
	for _, a := range tokens {
		assets = append(assets, chain.OutputAsset{
			PolicyID:  a.PolicyID,
			AssetName: chain.HexName(a.AssetName),
			Quantity:  a.Quantity,
		})
	}

	outputs := []chain.Output{{
		Address:  vault.ContractAddress,
		Lovelace: tx.Amount,
		Assets:   assets,
		Datum: &chain.Datum{
			Type: "inline",
			Value: map[string]interface{}{
				"policy_id":  vault.ScriptHash,
				"asset_name": vault.AssetVaultName,
				"owner":      changeAddress,
			},
		},
	}}
	if tx.Fee > 0 && s.cfg.AdminAddress != "" {
		outputs = append(outputs, chain.Output{Address: s.cfg.AdminAddress, Lovelace: tx.Fee})
	}

	return chain.TxSpec{
		ChangeAddress: changeAddress,
		UTXOs:         utxo.Refs(selected),
		Mint: []chain.MintEntry{{
			Version:   "cip25",
			AssetName: chain.HexName(s.cfg.ReceiptAssetName),
			PolicyID:  vault.ScriptHash,
			Type:      "plutus",
			Quantity:  1,
		}},
		ScriptInteractions: []chain.ScriptInteraction{{
			Purpose: "mint",
			Hash:    vault.ScriptHash,
			Redeemer: chain.Redeemer{
				Type: "json",
				Value: map[string]interface{}{
					"output_index": 0,
					"contribution": kind,
				},
			},
		}},
		Outputs:         outputs,
		ReferenceInputs: vaultReferenceInputs(vault),
		RequiredSigners: []string{s.signer.KeyHash()},
		Validity:        s.validity(),
	}
}

func vaultReferenceInputs(vault *models.Vault) []string {
	return []string{
		chain.FormatRef(vault.LastUpdateTxHash, vault.LastUpdateTxIndex),
		chain.FormatRef(vault.PublicationHash, 0),
	}
}

func (s *composerService) validity() *chain.Validity {
	now := s.now()
	return &chain.Validity{
		ValidFrom: now.UnixMilli(),
		ValidTo:   now.Add(s.cfg.ValidityWindow).UnixMilli(),
	}
}

// buildAndSign asks the builder for the balanced transaction and adds the
// admin witness.
func (s *composerService) buildAndSign(ctx context.Context, spec chain.TxSpec) (string, error) {
	built, err := s.builder.BuildTransaction(ctx, spec)
	if err != nil {
		return "", translateChainError(err)
	}
	signed, err := chain.AddWitness(built.Complete, s.signer)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return signed, nil
}

// BuildClaim assembles the transaction paying out an available claim:
// the contribution output is spent, its receipt burned and the vault
// tokens minted to the owner.
func (s *composerService) BuildClaim(ctx context.Context, userID, claimID, changeAddress string) (*BuildResult, error) {
	log := logger.Named("composer")

	var claim models.Claim
	if err := s.db.Where("id = ? AND user_id = ?", claimID, userID).First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClaimNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if claim.Status != models.ClaimStatusAvailable {
		return nil, apperrors.ErrClaimNotAvailable
	}
	if err := s.checkChangeAddress(userID, changeAddress); err != nil {
		log.Warnw("change address mismatch", "user_id", userID, "claim_id", claimID)
		return nil, err
	}

	vault, err := s.loadVault(claim.VaultID)
	if err != nil {
		return nil, err
	}
	if !vault.HasChainReferences() {
		return nil, apperrors.ErrVaultMisconfigured
	}
	if vault.Status != models.VaultStatusLocked {
		return nil, apperrors.ErrVaultPhaseInvalid
	}

	var source models.Transaction
	if err := s.db.Where("id = ?", claim.TransactionID).First(&source).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if source.Status != models.TransactionStatusConfirmed || source.TxHash == nil {
		return nil, apperrors.WithMessage(apperrors.ErrClaimNotAvailable, "contribution is not confirmed on chain")
	}

	tx, err := s.txSvc.CreateTransaction(&models.Transaction{
		VaultID: &vault.ID,
		UserID:  &userID,
		Type:    models.TransactionTypeClaim,
		Amount:  claim.Amount,
		Metadata: datatypes.NewJSONType(models.TransactionMetadata{
			ClaimIDs: []string{claim.ID},
		}),
	})
	if err != nil {
		return nil, err
	}

	// Reserve the claim for this transaction; a concurrent build loses here.
	res := s.db.Model(&models.Claim{}).
		Where("id = ? AND status = ?", claim.ID, models.ClaimStatusAvailable).
		Updates(map[string]interface{}{
			"status":             models.ClaimStatusPending,
			"distribution_tx_id": tx.ID,
		})
	if res.Error != nil {
		return nil, s.fail(ctx, tx.ID, apperrors.Wrap(apperrors.ErrInternalServer, res.Error))
	}
	if res.RowsAffected == 0 {
		return nil, s.fail(ctx, tx.ID, apperrors.ErrClaimNotAvailable)
	}

	wallet, err := s.indexer.AddressUTXOs(ctx, changeAddress)
	if err != nil {
		return nil, s.fail(ctx, tx.ID, translateChainError(err))
	}
	selected, err := s.selectInputs(wallet, s.cfg.MinReserveLovelace, nil)
	if err != nil {
		return nil, s.fail(ctx, tx.ID, err)
	}

	spec := s.claimSpec(vault, &source, &claim, changeAddress, selected)
	presigned, err := s.buildAndSign(ctx, spec)
	if err != nil {
		log.Warnw("claim build failed", "claim_id", claim.ID, "transaction_id", tx.ID, "error", err)
		return nil, s.fail(ctx, tx.ID, err)
	}

	s.audit.Log(userID, models.AuditActionBuild, "claim", claim.ID, "", map[string]interface{}{
		"transaction_id": tx.ID,
		"amount":         claim.Amount,
	})
	log.Infow("claim built", "claim_id", claim.ID, "transaction_id", tx.ID, "amount", claim.Amount)
	return &BuildResult{TransactionID: tx.ID, PresignedTx: presigned}, nil
}

func (s *composerService) claimSpec(vault *models.Vault, source *models.Transaction, claim *models.Claim, changeAddress string, selected []chain.UTXO) chain.TxSpec {
	return chain.TxSpec{
		ChangeAddress: changeAddress,
		UTXOs:         utxo.Refs(selected),
		Mint: []chain.MintEntry{
			{
				Version:   "cip25",
				AssetName: chain.HexName(vault.AssetVaultName),
				PolicyID:  vault.ScriptHash,
				Type:      "plutus",
				Quantity:  claim.Amount,
			},
			{
				Version:   "cip25",
				AssetName: chain.HexName(s.cfg.ReceiptAssetName),
				PolicyID:  vault.ScriptHash,
				Type:      "plutus",
				Quantity:  -1,
			},
		},
		ScriptInteractions: []chain.ScriptInteraction{
			{
				Purpose:   "spend",
				Hash:      vault.ScriptHash,
				OutputRef: &chain.OutputRef{TxHash: *source.TxHash, OutputIndex: 0},
				Redeemer: chain.Redeemer{
					Type:  "json",
					Value: map[string]interface{}{"claim": "receipt"},
				},
			},
			{
				Purpose: "mint",
				Hash:    vault.ScriptHash,
				Redeemer: chain.Redeemer{
					Type: "json",
					Value: map[string]interface{}{
						"output_index": 0,
						"claim":        "vault_token",
					},
				},
			},
		},
		Outputs: []chain.Output{{
			Address: changeAddress,
			Assets: []chain.OutputAsset{{
				PolicyID:  vault.ScriptHash,
				AssetName: chain.HexName(vault.AssetVaultName),
				Quantity:  claim.Amount,
			}},
		}},
		ReferenceInputs: vaultReferenceInputs(vault),
		RequiredSigners: []string{s.signer.KeyHash()},
		Validity:        s.validity(),
	}
}

// SubmitTransaction forwards the user-signed transaction to the network and
// records its hash.
func (s *composerService) SubmitTransaction(ctx context.Context, userID string, input SubmitInput) (*SubmitResult, error) {
	log := logger.Named("composer")

	if strings.TrimSpace(input.Transaction) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction is required")
	}
	tx, err := s.txSvc.GetTransaction(userID, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status != models.TransactionStatusCreated {
		if tx.TxHash != nil {
			return nil, apperrors.ErrDuplicateSubmission
		}
		return nil, apperrors.WithMessage(apperrors.ErrInvalidTransition, "transaction is not awaiting submission")
	}

	submitted, err := s.builder.SubmitTransaction(ctx, chain.SubmitRequest{
		Transaction: input.Transaction,
		Signatures:  input.Signatures,
	})
	if err != nil {
		log.Warnw("submission rejected", "transaction_id", tx.ID, "error", err)
		return nil, s.fail(ctx, tx.ID, translateChainError(err))
	}

	hash := submitted.TxHash
	if _, err := s.txSvc.MarkSubmitted(ctx, tx.ID, hash); err != nil {
		// The network already holds the transaction; the hash is the only
		// handle left for reconciling the row.
		log.Errorw("failed to record accepted transaction",
			"transaction_id", tx.ID, "tx_hash", hash, "error", err)
		return nil, err
	}

	s.audit.Log(userID, models.AuditActionSubmit, string(tx.Type), tx.ID, "", map[string]interface{}{"tx_hash": hash})
	return &SubmitResult{TransactionID: tx.ID, TxHash: hash}, nil
}

// checkChangeAddress ensures the wallet paying for a transaction is the one
// on file for userID.
func (s *composerService) checkChangeAddress(userID, changeAddress string) error {
	if strings.TrimSpace(changeAddress) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "change address is required")
	}
	user, err := s.users.GetUserByID(userID)
	if err != nil {
		return err
	}
	if user.Address != changeAddress {
		return apperrors.ErrChangeAddressMismatch
	}
	return nil
}

func (s *composerService) loadVault(id string) (*models.Vault, error) {
	var vault models.Vault
	if err := s.db.Where("id = ?", id).First(&vault).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrVaultNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &vault, nil
}

// fail marks the transaction failed with cause as the reason and returns
// cause. A failure to record the failure is logged, not returned.
func (s *composerService) fail(ctx context.Context, transactionID string, cause error) error {
	reason := cause.Error()
	var appErr *apperrors.AppError
	if errors.As(cause, &appErr) && appErr.Internal != nil {
		reason = appErr.Code + ": " + appErr.Internal.Error()
	}
	if err := s.txSvc.MarkFailed(ctx, transactionID, reason); err != nil {
		logger.Named("composer").Errorw("failed to mark transaction failed",
			"transaction_id", transactionID, "error", err)
	}
	return cause
}

// translateChainError maps a gateway error onto the user-facing error set.
// The typed chain error stays reachable through errors.As.
func translateChainError(err error) error {
	var (
		insufficient *chain.InsufficientBalanceError
		missing      *chain.MissingUtxoError
		spent        *chain.UtxoSpentError
		script       *chain.ScriptValidationError
		size         *chain.TxSizeExceededError
		fee          *chain.FeeTooSmallError
		conserved    *chain.ValueNotConservedError
		validity     *chain.ValidityIntervalError
	)
	switch {
	case errors.As(err, &insufficient):
		return apperrors.Wrap(apperrors.ErrInsufficientBalance, err)
	case errors.As(err, &missing), errors.As(err, &spent):
		return apperrors.Wrap(apperrors.ErrStaleUTXO, err)
	case errors.As(err, &script):
		return apperrors.Wrap(apperrors.ErrScriptValidation, err)
	case errors.As(err, &size):
		return apperrors.Wrap(apperrors.ErrTxTooLarge, err)
	case errors.As(err, &fee), errors.As(err, &conserved), errors.As(err, &validity):
		return apperrors.Wrap(apperrors.ErrTxRejected, err)
	default:
		return apperrors.Wrap(apperrors.ErrGatewayUnavailable, err)
	}
}

// translateSelectionError maps a wallet selection failure onto the
// user-facing error set.
func translateSelectionError(err error) error {
	var (
		balance *utxo.InsufficientBalanceError
		assets  *utxo.InsufficientAssetsError
		limit   *utxo.LimitExceededError
	)
	switch {
	case errors.As(err, &balance):
		return apperrors.Wrap(apperrors.ErrInsufficientBalance, err)
	case errors.As(err, &assets):
		return apperrors.WrapWithMessage(apperrors.ErrInsufficientAssets,
			"Wallet does not hold enough of the requested assets: "+strings.TrimPrefix(assets.Error(), "insufficient assets: "), err)
	case errors.As(err, &limit):
		return apperrors.Wrap(apperrors.ErrUTXOLimitExceeded, err)
	case errors.Is(err, utxo.ErrNoUTXOs):
		return apperrors.WrapWithMessage(apperrors.ErrInsufficientBalance, "wallet holds no spendable outputs", err)
	default:
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
}
