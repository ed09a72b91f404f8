package testutil

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"vaultflow/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// bech32 data characters; '1', 'b', 'i' and 'o' are not part of the set.
const bech32Chars = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// encode writes n in base 32 over the bech32 alphabet, left padded with 'q'
// to width characters.
func encode(n int64, width int) string {
	var b strings.Builder
	for n > 0 {
		b.WriteByte(bech32Chars[n%32])
		n /= 32
	}
	s := b.String()
	if len(s) < width {
		s += strings.Repeat("q", width-len(s))
	}
	return s
}

// TestAddress returns a unique, syntactically valid testnet address.
func TestAddress() string {
	return "addr_test1" + encode(nextID(), 58)
}

// TestHash returns a unique 64 character hex hash.
func TestHash() string {
	return hexPad(nextID(), 64)
}

// TestPolicyID returns a unique 56 character hex policy id.
func TestPolicyID() string {
	return hexPad(nextID(), 56)
}

func hexPad(n int64, width int) string {
	const digits = "0123456789abcdef"
	out := []byte(strings.Repeat("0", width))
	for i := width - 1; n > 0 && i >= 0; i-- {
		out[i] = digits[n%16]
		n /= 16
	}
	return string(out)
}

// CreateTestUser creates a user with a unique wallet address.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithAddress(t, db, TestAddress())
}

// CreateTestUserWithAddress creates a user holding the given address.
func CreateTestUserWithAddress(t *testing.T, db *gorm.DB, address string) *models.User {
	t.Helper()

	user := &models.User{
		Address: address,
		Name:    "Test User",
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestVault creates a vault in the given phase with every on-chain
// reference populated.
func CreateTestVault(t *testing.T, db *gorm.DB, ownerID string, status models.VaultStatus) *models.Vault {
	t.Helper()

	now := time.Now()
	vault := &models.Vault{
		OwnerID:                ownerID,
		Name:                   "Test Vault",
		Status:                 status,
		ContractAddress:        TestAddress(),
		ScriptHash:             TestPolicyID(),
		AssetVaultName:         "7661756c74",
		PublicationHash:        TestHash(),
		LastUpdateTxHash:       TestHash(),
		LastUpdateTxIndex:      0,
		VTDecimals:             6,
		VTPrice:                decimal.NewFromInt(1),
		AcquireReservePct:      decimal.NewFromInt(10),
		ContributionPhaseStart: &now,
	}
	if err := db.Create(vault).Error; err != nil {
		t.Fatalf("failed to create test vault: %v", err)
	}
	return vault
}

// CreateTestTransaction creates a transaction in the given status. A tx hash
// is assigned for every status past created.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, vaultID string, txType models.TransactionType, status models.TransactionStatus, amount int64) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID: &userID,
		Type:   txType,
		Status: status,
		Amount: amount,
	}
	if vaultID != "" {
		tx.VaultID = &vaultID
	}
	if status != models.TransactionStatusCreated {
		hash := TestHash()
		now := time.Now()
		tx.TxHash = &hash
		tx.SubmittedAt = &now
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestAsset creates an asset row in the given status.
func CreateTestAsset(t *testing.T, db *gorm.DB, vaultID, transactionID string, asset models.Asset) *models.Asset {
	t.Helper()

	asset.VaultID = vaultID
	asset.TransactionID = transactionID
	if asset.Status == "" {
		asset.Status = models.AssetStatusPending
	}
	if asset.Origin == "" {
		asset.Origin = models.AssetOriginContributed
	}
	if asset.Status == models.AssetStatusLocked && asset.LockedAt == nil {
		now := time.Now()
		asset.LockedAt = &now
	}
	if err := db.Create(&asset).Error; err != nil {
		t.Fatalf("failed to create test asset: %v", err)
	}
	return &asset
}

// CreateTestClaim creates a claim for the given source transaction.
func CreateTestClaim(t *testing.T, db *gorm.DB, userID, vaultID, transactionID string, status models.ClaimStatus, amount int64) *models.Claim {
	t.Helper()

	claim := &models.Claim{
		VaultID:       vaultID,
		UserID:        userID,
		TransactionID: transactionID,
		Type:          models.ClaimTypeStandard,
		Status:        status,
		Amount:        amount,
	}
	if err := db.Create(claim).Error; err != nil {
		t.Fatalf("failed to create test claim: %v", err)
	}
	return claim
}

// CreateTestExpansionProposal creates an active expansion proposal and moves
// the vault into the expansion phase.
func CreateTestExpansionProposal(t *testing.T, db *gorm.DB, vault *models.Vault, cfg models.ExpansionConfig) *models.Proposal {
	t.Helper()

	started := time.Now().Add(-time.Hour)
	proposal := &models.Proposal{
		VaultID:   vault.ID,
		Type:      models.ProposalTypeExpansion,
		Status:    models.ProposalStatusActive,
		StartedAt: &started,
		Expansion: datatypes.NewJSONType(cfg),
	}
	if err := db.Create(proposal).Error; err != nil {
		t.Fatalf("failed to create test proposal: %v", err)
	}

	if err := db.Model(vault).Updates(map[string]interface{}{
		"status":                models.VaultStatusExpansion,
		"expansion_phase_start": started,
	}).Error; err != nil {
		t.Fatalf("failed to move vault to expansion: %v", err)
	}
	vault.Status = models.VaultStatusExpansion
	vault.ExpansionPhaseStart = &started
	return proposal
}
