package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultflow/internal/models"
	"vaultflow/internal/testutil"
)

func lockedNFT(t *testing.T, db *gorm.DB, vaultID, txID, policy, name, floor string, lockedAt time.Time) *models.Asset {
	t.Helper()
	return testutil.CreateTestAsset(t, db, vaultID, txID, models.Asset{
		Type:       models.AssetTypeNFT,
		PolicyID:   policy,
		AssetName:  name,
		Quantity:   1,
		Status:     models.AssetStatusLocked,
		LockedAt:   &lockedAt,
		FloorPrice: decimal.RequireFromString(floor),
	})
}

func TestCloseExpansion(t *testing.T) {
	t.Run("limit_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		audit := &mockAudit{}
		svc := NewDistributionService(db, &mockPrices{}, audit)
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		policy := testutil.TestPolicyID()
		existing := models.Multiplier{PolicyID: testutil.TestPolicyID(), Multiplier: 7}
		db.Model(vault).Update("multipliers", datatypes.NewJSONType([]models.Multiplier{existing}))
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{
			PriceType:  models.ExpansionPriceLimit,
			LimitPrice: decimal.NewFromInt(3),
			Duration:   time.Hour,
		})

		contribution := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, contribution.ID, policy, "01", "10", time.Now())

		// Locked before the phase began; not part of this distribution.
		earlier := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, earlier.ID, policy, "02", "10", time.Now().Add(-2*time.Hour))

		res, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertNoError(t, err)
		if res.ClaimsCreated != 1 || res.ClaimsSkipped != 0 {
			t.Errorf("expected 1 claim, got %+v", res)
		}

		var claims []models.Claim
		db.Where("vault_id = ?", vault.ID).Find(&claims)
		if len(claims) != 1 {
			t.Fatalf("expected 1 claim, got %d", len(claims))
		}
		c := claims[0]
		if c.TransactionID != contribution.ID || c.UserID != user.ID {
			t.Errorf("claim linked to wrong transaction or user")
		}
		if c.Amount != 3_333_333 {
			t.Errorf("expected 3333333, got %d", c.Amount)
		}
		if c.Status != models.ClaimStatusAvailable || c.Type != models.ClaimTypeExpansion {
			t.Errorf("expected available expansion claim, got %s/%s", c.Type, c.Status)
		}
		calc := c.Metadata.Data()
		if !calc.AssetValueAda.Equal(decimal.NewFromInt(10)) || !calc.ReferencePrice.Equal(decimal.NewFromInt(3)) || len(calc.AssetIDs) != 1 {
			t.Errorf("unexpected calculation metadata %+v", calc)
		}

		v := reloadVault(t, db, vault.ID)
		if v.Status != models.VaultStatusLocked || v.ExpansionPhaseStart != nil {
			t.Errorf("expected closed phase, got %s", v.Status)
		}
		mult := v.Multipliers.Data()
		if len(mult) != 2 || mult[0].PolicyID != existing.PolicyID {
			t.Fatalf("expected existing multiplier kept and one appended, got %+v", mult)
		}
		if mult[1].PolicyID != policy || mult[1].AssetName != nil || mult[1].Multiplier != 3_333_333 {
			t.Errorf("unexpected appended multiplier %+v", mult[1])
		}

		var p models.Proposal
		db.Where("id = ?", proposal.ID).First(&p)
		if p.Status != models.ProposalStatusExecuted {
			t.Errorf("expected executed proposal, got %s", p.Status)
		}
		if p.Expansion.Data().CurrentAssetCount != 1 {
			t.Errorf("expected asset count 1, got %d", p.Expansion.Data().CurrentAssetCount)
		}
		if got := audit.recorded(); len(got) != 1 || got[0] != "CLOSE_PHASE:proposal" {
			t.Errorf("expected one phase close audit entry, got %v", got)
		}
	})

	t.Run("market_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		prices := &mockPrices{TokenFn: func(_ context.Context, policyID, assetName string) (decimal.Decimal, error) {
			if policyID != vault.ScriptHash || assetName != vault.AssetVaultName {
				t.Errorf("expected vault token price lookup, got %s.%s", policyID, assetName)
			}
			return decimal.RequireFromString("0.5"), nil
		}}
		svc := NewDistributionService(db, prices, &mockAudit{})
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{PriceType: models.ExpansionPriceMarket})
		contribution := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, contribution.ID, testutil.TestPolicyID(), "01", "1", time.Now())

		res, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertNoError(t, err)
		if !res.ReferencePrice.Equal(decimal.RequireFromString("0.5")) {
			t.Errorf("expected reference price 0.5, got %s", res.ReferencePrice)
		}
		var c models.Claim
		db.Where("transaction_id = ?", contribution.ID).First(&c)
		if c.Amount != 2_000_000 {
			t.Errorf("expected 2000000, got %d", c.Amount)
		}
	})

	t.Run("zero_market_price_keeps_phase_open", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDistributionService(db, &mockPrices{TokenFn: func(context.Context, string, string) (decimal.Decimal, error) {
			return decimal.Zero, nil
		}}, &mockAudit{})
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{PriceType: models.ExpansionPriceMarket})
		contribution := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, contribution.ID, testutil.TestPolicyID(), "01", "1", time.Now())

		_, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertAppError(t, err, "PHASE_NOT_CLOSABLE")

		var count int64
		db.Model(&models.Claim{}).Count(&count)
		if count != 0 {
			t.Errorf("expected no claims, got %d", count)
		}
		if v := reloadVault(t, db, vault.ID); v.Status != models.VaultStatusExpansion {
			t.Errorf("expected phase to stay open, got %s", v.Status)
		}
	})

	t.Run("price_source_error", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDistributionService(db, &mockPrices{TokenFn: func(context.Context, string, string) (decimal.Decimal, error) {
			return decimal.Zero, errors.New("dex down")
		}}, &mockAudit{})
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{PriceType: models.ExpansionPriceMarket})

		_, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertAppError(t, err, "PHASE_NOT_CLOSABLE")
	})

	t.Run("zero_value_claim_skipped", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDistributionService(db, nil, &mockAudit{})
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{
			PriceType:  models.ExpansionPriceLimit,
			LimitPrice: decimal.NewFromInt(1),
		})
		contribution := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, contribution.ID, testutil.TestPolicyID(), "01", "0", time.Now())

		res, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertNoError(t, err)
		if res.ClaimsCreated != 0 || res.ClaimsSkipped != 1 {
			t.Errorf("expected skipped claim, got %+v", res)
		}
	})

	t.Run("resumes_after_partial_close", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDistributionService(db, nil, &mockAudit{})
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{
			PriceType:  models.ExpansionPriceLimit,
			LimitPrice: decimal.NewFromInt(2),
		})
		contribution := testutil.CreateTestTransaction(t, db, user.ID, vault.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
		lockedNFT(t, db, vault.ID, contribution.ID, testutil.TestPolicyID(), "01", "4", time.Now())

		// Claims saved by an earlier run that stopped before the phase closed.
		prior := testutil.CreateTestClaim(t, db, user.ID, vault.ID, contribution.ID, models.ClaimStatusPending, 2_000_000)
		db.Model(prior).Updates(map[string]interface{}{"proposal_id": proposal.ID, "type": models.ClaimTypeExpansion})

		res, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertNoError(t, err)
		if res.ClaimsCreated != 0 {
			t.Errorf("expected no new claims, got %d", res.ClaimsCreated)
		}

		var claims []models.Claim
		db.Where("transaction_id = ?", contribution.ID).Find(&claims)
		if len(claims) != 1 || claims[0].Status != models.ClaimStatusAvailable {
			t.Errorf("expected the prior claim released, got %+v", claims)
		}
	})

	t.Run("not_closable", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewDistributionService(db, nil, &mockAudit{})
		user := testutil.CreateTestUser(t, db)
		vault := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
		proposal := testutil.CreateTestExpansionProposal(t, db, vault, models.ExpansionConfig{
			PriceType:  models.ExpansionPriceLimit,
			LimitPrice: decimal.NewFromInt(1),
		})
		db.Model(proposal).Update("status", models.ProposalStatusExecuted)

		_, err := svc.CloseExpansion(context.Background(), proposal.ID)
		testutil.AssertAppError(t, err, "PHASE_NOT_CLOSABLE")

		_, err = svc.CloseExpansion(context.Background(), "missing")
		testutil.AssertAppError(t, err, "PROPOSAL_NOT_FOUND")
	})
}

func TestCloseExpiredExpansions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewDistributionService(db, nil, &mockAudit{})
	user := testutil.CreateTestUser(t, db)

	elapsed := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
	testutil.CreateTestExpansionProposal(t, db, elapsed, models.ExpansionConfig{
		PriceType:  models.ExpansionPriceLimit,
		LimitPrice: decimal.NewFromInt(1),
		Duration:   30 * time.Minute,
	})

	capped := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
	testutil.CreateTestExpansionProposal(t, db, capped, models.ExpansionConfig{
		PriceType:  models.ExpansionPriceLimit,
		LimitPrice: decimal.NewFromInt(1),
		Duration:   24 * time.Hour,
		AssetMax:   1,
	})
	contribution := testutil.CreateTestTransaction(t, db, user.ID, capped.ID, models.TransactionTypeContribute, models.TransactionStatusConfirmed, 0)
	lockedNFT(t, db, capped.ID, contribution.ID, testutil.TestPolicyID(), "01", "1", time.Now())

	open := testutil.CreateTestVault(t, db, user.ID, models.VaultStatusLocked)
	testutil.CreateTestExpansionProposal(t, db, open, models.ExpansionConfig{
		PriceType:  models.ExpansionPriceLimit,
		LimitPrice: decimal.NewFromInt(1),
		Duration:   24 * time.Hour,
	})

	closed, err := svc.CloseExpiredExpansions(context.Background(), time.Now())
	testutil.AssertNoError(t, err)
	if closed != 2 {
		t.Errorf("expected 2 closed expansions, got %d", closed)
	}
	if v := reloadVault(t, db, open.ID); v.Status != models.VaultStatusExpansion {
		t.Errorf("expected open expansion untouched, got %s", v.Status)
	}
	if v := reloadVault(t, db, capped.ID); v.Status != models.VaultStatusLocked {
		t.Errorf("expected capped expansion closed, got %s", v.Status)
	}
}
