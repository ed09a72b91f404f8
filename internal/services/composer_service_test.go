package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"vaultflow/internal/chain"
	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
	"vaultflow/internal/testutil"
)

const testReceipt = "72656365697074"

type composerEnv struct {
	db      *gorm.DB
	svc     ComposerServicer
	txSvc   TransactionServicer
	builder *mockBuilder
	indexer *mockIndexer
	audit   *mockAudit
	signer  chain.Signer
	user    *models.User
	vault   *models.Vault
}

func newComposerEnv(t *testing.T, fee int64) *composerEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	env := &composerEnv{
		db:      db,
		builder: &mockBuilder{},
		indexer: &mockIndexer{},
		audit:   &mockAudit{},
		signer:  testSigner(t),
	}
	env.txSvc = newTestTransactionService(db, env.indexer, nil)
	env.svc = NewComposerService(db, env.builder, env.indexer, env.signer, env.txSvc, NewUserService(db), env.audit, ComposerConfig{
		AdminAddress:        testutil.TestAddress(),
		ProtocolFeeLovelace: fee,
		MinReserveLovelace:  2_000_000,
		MaxContribUTXOs:     10,
		MinUTXOLovelace:     1_000_000,
		ValidityWindow:      time.Hour,
		ReceiptAssetName:    testReceipt,
	})
	env.user = testutil.CreateTestUser(t, db)
	env.vault = testutil.CreateTestVault(t, db, env.user.ID, models.VaultStatusContribution)

	env.builder.BuildFn = func(context.Context, chain.TxSpec) (*chain.BuildResult, error) {
		return &chain.BuildResult{Complete: unsignedTx(t)}, nil
	}
	return env
}

func (e *composerEnv) wallet(utxos ...chain.UTXO) {
	e.indexer.AddressUTXOsFn = func(_ context.Context, address string) ([]chain.UTXO, error) {
		if address != e.user.Address {
			return nil, nil
		}
		return utxos, nil
	}
}

func TestCreateContribution(t *testing.T) {
	t.Run("lovelace", func(t *testing.T) {
		env := newComposerEnv(t, 1_000_000)
		defer testutil.TeardownTestDB(t, env.db)

		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 50_000_000})
		testutil.AssertNoError(t, err)
		if tx.Status != models.TransactionStatusCreated || tx.Type != models.TransactionTypeContribute {
			t.Errorf("unexpected transaction %s/%s", tx.Type, tx.Status)
		}
		if tx.Fee != 1_000_000 {
			t.Errorf("expected protocol fee, got %d", tx.Fee)
		}
		pending := tx.Meta().PendingAssets
		if len(pending) != 1 || pending[0].Type != models.AssetTypeADA || pending[0].Quantity != 50_000_000 {
			t.Errorf("unexpected pending assets %+v", pending)
		}
	})

	t.Run("empty", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)

		_, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("invalid_asset", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)

		_, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{
			Assets: []models.PendingAsset{{Type: models.AssetTypeNFT, PolicyID: "xyz", Quantity: 1}},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("vault_locked", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		locked := testutil.CreateTestVault(t, env.db, env.user.ID, models.VaultStatusLocked)

		_, err := env.svc.CreateContribution(env.user.ID, locked.ID, ContributionInput{Lovelace: 1})
		testutil.AssertAppError(t, err, "VAULT_PHASE_INVALID")
	})

	t.Run("unknown_vault", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)

		_, err := env.svc.CreateContribution(env.user.ID, "missing", ContributionInput{Lovelace: 1})
		testutil.AssertAppError(t, err, "VAULT_NOT_FOUND")
	})

	t.Run("expansion_whitelist", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		allowed := testutil.TestPolicyID()
		testutil.CreateTestExpansionProposal(t, env.db, env.vault, models.ExpansionConfig{
			PriceType: models.ExpansionPriceLimit,
			PolicyIDs: []string{allowed},
		})

		_, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{
			Assets: []models.PendingAsset{{Type: models.AssetTypeNFT, PolicyID: allowed, AssetName: "01", Quantity: 1}},
		})
		testutil.AssertNoError(t, err)

		_, err = env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{
			Assets: []models.PendingAsset{{Type: models.AssetTypeNFT, PolicyID: testutil.TestPolicyID(), AssetName: "01", Quantity: 1}},
		})
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestBuildContribution(t *testing.T) {
	t.Run("lovelace_contribution", func(t *testing.T) {
		env := newComposerEnv(t, 1_000_000)
		defer testutil.TeardownTestDB(t, env.db)
		env.wallet(
			walletUTXO(env.user.Address, testutil.TestHash(), 0, 5_000_000),
			walletUTXO(env.user.Address, testutil.TestHash(), 1, 60_000_000),
		)
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 50_000_000})
		testutil.AssertNoError(t, err)

		res, err := env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: env.user.Address,
		})
		testutil.AssertNoError(t, err)
		if res.TransactionID != tx.ID {
			t.Errorf("expected transaction %s, got %s", tx.ID, res.TransactionID)
		}
		if n, err := chain.VKeyWitnessCount(res.PresignedTx); err != nil || n != 1 {
			t.Errorf("expected admin witness, got %d (%v)", n, err)
		}

		spec := env.builder.lastSpec
		if len(spec.UTXOs) != 1 {
			t.Errorf("expected the 60 ADA output alone, got %v", spec.UTXOs)
		}
		if len(spec.Mint) != 1 || spec.Mint[0].Quantity != 1 || spec.Mint[0].PolicyID != env.vault.ScriptHash ||
			spec.Mint[0].AssetName.Name != testReceipt {
			t.Errorf("unexpected receipt mint %+v", spec.Mint)
		}
		redeemer, _ := spec.ScriptInteractions[0].Redeemer.Value.(map[string]interface{})
		if redeemer["contribution"] != "lovelace" || redeemer["output_index"] != 0 {
			t.Errorf("unexpected redeemer %+v", redeemer)
		}
		if len(spec.Outputs) != 2 {
			t.Fatalf("expected vault and fee outputs, got %d", len(spec.Outputs))
		}
		vaultOut := spec.Outputs[0]
		if vaultOut.Address != env.vault.ContractAddress || vaultOut.Lovelace != 50_000_000 {
			t.Errorf("unexpected vault output %+v", vaultOut)
		}
		datum, _ := vaultOut.Datum.Value.(map[string]interface{})
		if datum["owner"] != env.user.Address || datum["policy_id"] != env.vault.ScriptHash || datum["asset_name"] != env.vault.AssetVaultName {
			t.Errorf("unexpected datum %+v", datum)
		}
		if spec.Outputs[1].Lovelace != 1_000_000 {
			t.Errorf("expected fee output of 1 ADA, got %d", spec.Outputs[1].Lovelace)
		}
		wantRefs := []string{
			chain.FormatRef(env.vault.LastUpdateTxHash, env.vault.LastUpdateTxIndex),
			chain.FormatRef(env.vault.PublicationHash, 0),
		}
		if strings.Join(spec.ReferenceInputs, ",") != strings.Join(wantRefs, ",") {
			t.Errorf("expected reference inputs %v, got %v", wantRefs, spec.ReferenceInputs)
		}
		if len(spec.RequiredSigners) != 1 || spec.RequiredSigners[0] != env.signer.KeyHash() {
			t.Errorf("expected admin required signer, got %v", spec.RequiredSigners)
		}
		if spec.Validity == nil || spec.Validity.ValidTo <= spec.Validity.ValidFrom {
			t.Errorf("expected validity window, got %+v", spec.Validity)
		}
	})

	t.Run("asset_contribution", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		policy := testutil.TestPolicyID()
		env.wallet(
			walletUTXO(env.user.Address, testutil.TestHash(), 0, 1_500_000, chain.Amount{Unit: policy + "01", Quantity: "5"}),
			walletUTXO(env.user.Address, testutil.TestHash(), 0, 10_000_000),
		)
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{
			Assets: []models.PendingAsset{{Type: models.AssetTypeFT, PolicyID: policy, AssetName: "01", Quantity: 3}},
		})
		testutil.AssertNoError(t, err)

		_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: env.user.Address,
		})
		testutil.AssertNoError(t, err)

		spec := env.builder.lastSpec
		if len(spec.UTXOs) != 2 {
			t.Errorf("expected token output topped up with lovelace, got %v", spec.UTXOs)
		}
		redeemer, _ := spec.ScriptInteractions[0].Redeemer.Value.(map[string]interface{})
		if redeemer["contribution"] != "asset" {
			t.Errorf("expected asset contribution redeemer, got %+v", redeemer)
		}
		assets := spec.Outputs[0].Assets
		if len(assets) != 2 || assets[1].PolicyID != policy || assets[1].Quantity != 3 {
			t.Errorf("expected receipt plus 3 tokens, got %+v", assets)
		}
		if len(spec.Outputs) != 1 {
			t.Errorf("expected no fee output, got %d outputs", len(spec.Outputs))
		}
	})

	t.Run("change_address_mismatch", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		env.wallet(walletUTXO(env.user.Address, testutil.TestHash(), 0, 100_000_000))
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
		testutil.AssertNoError(t, err)

		_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: testutil.TestAddress(),
		})
		testutil.AssertAppError(t, err, "CHANGE_ADDRESS_MISMATCH")

		if len(env.builder.specs) != 0 {
			t.Error("builder must not be called")
		}
		if got := reloadTransaction(t, env.db, tx.ID).Status; got != models.TransactionStatusCreated {
			t.Errorf("expected transaction untouched, got %s", got)
		}
	})

	t.Run("other_users_transaction", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		other := testutil.CreateTestUser(t, env.db)
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
		testutil.AssertNoError(t, err)

		_, err = env.svc.BuildContribution(context.Background(), other.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: other.Address,
		})
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})

	t.Run("insufficient_balance", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		env.wallet(walletUTXO(env.user.Address, testutil.TestHash(), 0, 10_000_000))
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 50_000_000})
		testutil.AssertNoError(t, err)

		_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: env.user.Address,
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_BALANCE")
		testutil.AssertTransactionStatus(t, env.db, tx.ID, models.TransactionStatusFailed)
	})

	t.Run("insufficient_assets", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		policy := testutil.TestPolicyID()
		env.wallet(walletUTXO(env.user.Address, testutil.TestHash(), 0, 10_000_000))
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{
			Assets: []models.PendingAsset{{Type: models.AssetTypeNFT, PolicyID: policy, AssetName: "aa", Quantity: 1}},
		})
		testutil.AssertNoError(t, err)

		_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: env.user.Address,
		})
		testutil.AssertAppError(t, err, "INSUFFICIENT_ASSETS")
		if !strings.Contains(err.Error(), policy+"aa") {
			t.Errorf("expected message to name the token, got %q", err.Error())
		}
		testutil.AssertTransactionStatus(t, env.db, tx.ID, models.TransactionStatusFailed)
		if len(env.builder.specs) != 0 {
			t.Error("builder must not be called")
		}
	})

	t.Run("vault_misconfigured", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 1_000_000})
		testutil.AssertNoError(t, err)
		env.db.Model(env.vault).Update("publication_hash", "")

		_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
			TransactionID: tx.ID,
			ChangeAddress: env.user.Address,
		})
		testutil.AssertAppError(t, err, "VAULT_MISCONFIGURED")
		if got := reloadTransaction(t, env.db, tx.ID).Status; got != models.TransactionStatusFailed {
			t.Errorf("expected failed, got %s", got)
		}
	})

	gatewayFailures := []struct {
		name string
		err  error
		code string
	}{
		{"insufficient_balance", &chain.InsufficientBalanceError{Shortfall: 1_000}, "INSUFFICIENT_BALANCE"},
		{"script", &chain.ScriptValidationError{Detail: "VaultValidationFailed"}, "SCRIPT_VALIDATION_FAILED"},
		{"missing_utxo", &chain.MissingUtxoError{TxHash: "ab", OutputIndex: 1}, "STALE_UTXO"},
		{"too_large", &chain.TxSizeExceededError{Max: 16384, Actual: 17000}, "TX_TOO_LARGE"},
		{"unreachable", &chain.GatewayError{Message: "connection refused"}, "GATEWAY_UNAVAILABLE"},
	}
	for _, tc := range gatewayFailures {
		t.Run("gateway_"+tc.name, func(t *testing.T) {
			env := newComposerEnv(t, 0)
			defer testutil.TeardownTestDB(t, env.db)
			env.wallet(walletUTXO(env.user.Address, testutil.TestHash(), 0, 100_000_000))
			env.builder.BuildFn = func(context.Context, chain.TxSpec) (*chain.BuildResult, error) {
				return nil, tc.err
			}
			tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
			testutil.AssertNoError(t, err)

			_, err = env.svc.BuildContribution(context.Background(), env.user.ID, BuildContributionInput{
				TransactionID: tx.ID,
				ChangeAddress: env.user.Address,
			})
			testutil.AssertAppError(t, err, tc.code)
			if !errors.Is(err, chain.ErrGateway) {
				t.Error("expected typed gateway error to stay reachable")
			}

			got := reloadTransaction(t, env.db, tx.ID)
			if got.Status != models.TransactionStatusFailed {
				t.Errorf("expected failed, got %s", got.Status)
			}
			if !strings.HasPrefix(got.Meta().FailureReason, tc.code) {
				t.Errorf("expected failure reason to carry %s, got %q", tc.code, got.Meta().FailureReason)
			}
		})
	}
}

func TestSubmitTransaction(t *testing.T) {
	t.Run("records_hash", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		hash := testutil.TestHash()
		env.builder.SubmitFn = func(_ context.Context, req chain.SubmitRequest) (*chain.SubmitResult, error) {
			if req.Transaction != "signed" || len(req.Signatures) != 1 {
				t.Errorf("unexpected submit request %+v", req)
			}
			return &chain.SubmitResult{TxHash: hash}, nil
		}
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
		testutil.AssertNoError(t, err)

		res, err := env.svc.SubmitTransaction(context.Background(), env.user.ID, SubmitInput{
			TransactionID: tx.ID,
			Transaction:   "signed",
			Signatures:    []string{"sig"},
		})
		testutil.AssertNoError(t, err)
		if res.TxHash != hash {
			t.Errorf("expected hash %s, got %s", hash, res.TxHash)
		}

		got := reloadTransaction(t, env.db, tx.ID)
		if got.Status != models.TransactionStatusSubmitted || got.TxHash == nil || *got.TxHash != hash {
			t.Errorf("expected submitted with hash, got %s", got.Status)
		}
		var assets int64
		env.db.Model(&models.Asset{}).Where("transaction_id = ?", tx.ID).Count(&assets)
		if assets != 1 {
			t.Errorf("expected 1 pending asset, got %d", assets)
		}
		if got := env.audit.recorded(); len(got) != 2 || got[0] != "CREATE:contribution" || got[1] != "SUBMIT:contribute" {
			t.Errorf("unexpected audit trail %v", got)
		}
	})

	t.Run("record_failure_after_acceptance", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		taken := testutil.CreateTestTransaction(t, env.db, env.user.ID, env.vault.ID, models.TransactionTypeContribute, models.TransactionStatusSubmitted, 1)
		env.builder.SubmitFn = func(context.Context, chain.SubmitRequest) (*chain.SubmitResult, error) {
			return &chain.SubmitResult{TxHash: *taken.TxHash}, nil
		}
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
		testutil.AssertNoError(t, err)

		_, err = env.svc.SubmitTransaction(context.Background(), env.user.ID, SubmitInput{TransactionID: tx.ID, Transaction: "signed"})
		testutil.AssertAppError(t, err, "DUPLICATE_SUBMISSION")
		testutil.AssertTransactionStatus(t, env.db, tx.ID, models.TransactionStatusCreated)
		if got := env.audit.recorded(); len(got) != 1 || got[0] != "CREATE:contribution" {
			t.Errorf("submission must not be audited, got %v", got)
		}
	})

	t.Run("rejected", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		env.builder.SubmitFn = func(context.Context, chain.SubmitRequest) (*chain.SubmitResult, error) {
			return nil, &chain.UtxoSpentError{TxHash: "ab", OutputIndex: 0}
		}
		tx, err := env.svc.CreateContribution(env.user.ID, env.vault.ID, ContributionInput{Lovelace: 10_000_000})
		testutil.AssertNoError(t, err)

		_, err = env.svc.SubmitTransaction(context.Background(), env.user.ID, SubmitInput{TransactionID: tx.ID, Transaction: "signed"})
		testutil.AssertAppError(t, err, "STALE_UTXO")
		if got := reloadTransaction(t, env.db, tx.ID).Status; got != models.TransactionStatusFailed {
			t.Errorf("expected failed, got %s", got)
		}
	})

	t.Run("already_submitted", func(t *testing.T) {
		env := newComposerEnv(t, 0)
		defer testutil.TeardownTestDB(t, env.db)
		tx := testutil.CreateTestTransaction(t, env.db, env.user.ID, env.vault.ID, models.TransactionTypeContribute, models.TransactionStatusSubmitted, 1)

		_, err := env.svc.SubmitTransaction(context.Background(), env.user.ID, SubmitInput{TransactionID: tx.ID, Transaction: "signed"})
		testutil.AssertAppError(t, err, "DUPLICATE_SUBMISSION")
		if len(env.builder.submits) != 0 {
			t.Error("gateway must not be called")
		}
	})
}

func TestBuildClaim(t *testing.T) {
	setup := func(t *testing.T) (*composerEnv, *models.Transaction, *models.Claim) {
		t.Helper()
		env := newComposerEnv(t, 0)
		env.db.Model(env.vault).Update("status", models.VaultStatusLocked)
		env.wallet(walletUTXO(env.user.Address, testutil.TestHash(), 0, 10_000_000))
		source := testutil.CreateTestTransaction(t, env.db, env.user.ID, env.vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 1)
		claim := testutil.CreateTestClaim(t, env.db, env.user.ID, env.vault.ID, source.ID, models.ClaimStatusAvailable, 3_333_333)
		return env, source, claim
	}

	t.Run("builds_and_reserves", func(t *testing.T) {
		env, source, claim := setup(t)
		defer testutil.TeardownTestDB(t, env.db)

		res, err := env.svc.BuildClaim(context.Background(), env.user.ID, claim.ID, env.user.Address)
		testutil.AssertNoError(t, err)

		var got models.Claim
		env.db.Where("id = ?", claim.ID).First(&got)
		if got.Status != models.ClaimStatusPending || got.DistributionTxID == nil || *got.DistributionTxID != res.TransactionID {
			t.Errorf("expected claim reserved for %s, got %s", res.TransactionID, got.Status)
		}

		tx := reloadTransaction(t, env.db, res.TransactionID)
		if tx.Type != models.TransactionTypeClaim || len(tx.Meta().ClaimIDs) != 1 {
			t.Errorf("unexpected claim transaction %+v", tx)
		}

		spec := env.builder.lastSpec
		spend := spec.ScriptInteractions[0]
		if spend.Purpose != "spend" || spend.OutputRef == nil || spend.OutputRef.TxHash != *source.TxHash || spend.OutputRef.OutputIndex != 0 {
			t.Errorf("expected spend of the contribution output, got %+v", spend)
		}
		if len(spec.Mint) != 2 || spec.Mint[0].Quantity != 3_333_333 || spec.Mint[1].Quantity != -1 {
			t.Errorf("expected vault token mint and receipt burn, got %+v", spec.Mint)
		}
		if spec.Outputs[0].Address != env.user.Address || spec.Outputs[0].Assets[0].Quantity != 3_333_333 {
			t.Errorf("expected vault tokens paid to owner, got %+v", spec.Outputs[0])
		}
	})

	t.Run("not_available", func(t *testing.T) {
		env, _, claim := setup(t)
		defer testutil.TeardownTestDB(t, env.db)
		env.db.Model(claim).Update("status", models.ClaimStatusClaimed)

		_, err := env.svc.BuildClaim(context.Background(), env.user.ID, claim.ID, env.user.Address)
		testutil.AssertAppError(t, err, "CLAIM_NOT_AVAILABLE")
	})

	t.Run("other_user", func(t *testing.T) {
		env, _, claim := setup(t)
		defer testutil.TeardownTestDB(t, env.db)
		other := testutil.CreateTestUser(t, env.db)

		_, err := env.svc.BuildClaim(context.Background(), other.ID, claim.ID, other.Address)
		testutil.AssertAppError(t, err, "CLAIM_NOT_FOUND")
	})

	t.Run("change_address_mismatch", func(t *testing.T) {
		env, _, claim := setup(t)
		defer testutil.TeardownTestDB(t, env.db)

		_, err := env.svc.BuildClaim(context.Background(), env.user.ID, claim.ID, testutil.TestAddress())
		testutil.AssertAppError(t, err, "CHANGE_ADDRESS_MISMATCH")

		var got models.Claim
		env.db.Where("id = ?", claim.ID).First(&got)
		if got.Status != models.ClaimStatusAvailable {
			t.Errorf("expected claim untouched, got %s", got.Status)
		}
	})

	t.Run("gateway_failure_releases_claim", func(t *testing.T) {
		env, _, claim := setup(t)
		defer testutil.TeardownTestDB(t, env.db)
		env.builder.BuildFn = func(context.Context, chain.TxSpec) (*chain.BuildResult, error) {
			return nil, &chain.ScriptValidationError{Detail: "bad claim"}
		}

		_, err := env.svc.BuildClaim(context.Background(), env.user.ID, claim.ID, env.user.Address)
		testutil.AssertAppError(t, err, "SCRIPT_VALIDATION_FAILED")

		var got models.Claim
		env.db.Where("id = ?", claim.ID).First(&got)
		if got.Status != models.ClaimStatusAvailable || got.DistributionTxID != nil {
			t.Errorf("expected claim released, got %s", got.Status)
		}
	})
}

func TestTranslateChainError(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{&chain.FeeTooSmallError{Required: 2, Supplied: 1}, "TX_REJECTED"},
		{&chain.ValueNotConservedError{}, "TX_REJECTED"},
		{&chain.ValidityIntervalError{}, "TX_REJECTED"},
		{&chain.UtxoSpentError{}, "STALE_UTXO"},
		{errors.New("boom"), "GATEWAY_UNAVAILABLE"},
	}
	for _, tc := range tests {
		err := translateChainError(tc.err)
		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) || appErr.Code != tc.code {
			t.Errorf("%T: expected %s, got %v", tc.err, tc.code, err)
		}
	}
}
