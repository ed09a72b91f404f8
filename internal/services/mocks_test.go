package services

import (
	"context"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vaultflow/internal/chain"
	"vaultflow/internal/logger"
	"vaultflow/internal/models"
)

func init() {
	logger.Init("test")
}

// mockBuilder implements chain.Builder with overridable behavior and
// records the last spec it was asked to build.
type mockBuilder struct {
	BuildFn  func(ctx context.Context, spec chain.TxSpec) (*chain.BuildResult, error)
	SubmitFn func(ctx context.Context, req chain.SubmitRequest) (*chain.SubmitResult, error)

	mu       sync.Mutex
	specs    []chain.TxSpec
	submits  []chain.SubmitRequest
	lastSpec chain.TxSpec
}

func (m *mockBuilder) BuildTransaction(ctx context.Context, spec chain.TxSpec) (*chain.BuildResult, error) {
	m.mu.Lock()
	m.specs = append(m.specs, spec)
	m.lastSpec = spec
	m.mu.Unlock()
	if m.BuildFn != nil {
		return m.BuildFn(ctx, spec)
	}
	return nil, errors.New("not implemented")
}

func (m *mockBuilder) SubmitTransaction(ctx context.Context, req chain.SubmitRequest) (*chain.SubmitResult, error) {
	m.mu.Lock()
	m.submits = append(m.submits, req)
	m.mu.Unlock()
	if m.SubmitFn != nil {
		return m.SubmitFn(ctx, req)
	}
	return nil, errors.New("not implemented")
}

// mockIndexer implements chain.Indexer.
type mockIndexer struct {
	AddressUTXOsFn        func(ctx context.Context, address string) ([]chain.UTXO, error)
	TransactionFn         func(ctx context.Context, txHash string) (*chain.TxInfo, error)
	AddressTransactionsFn func(ctx context.Context, address string) ([]chain.AddressTx, error)
}

func (m *mockIndexer) AddressUTXOs(ctx context.Context, address string) ([]chain.UTXO, error) {
	if m.AddressUTXOsFn != nil {
		return m.AddressUTXOsFn(ctx, address)
	}
	return nil, nil
}

func (m *mockIndexer) Transaction(ctx context.Context, txHash string) (*chain.TxInfo, error) {
	if m.TransactionFn != nil {
		return m.TransactionFn(ctx, txHash)
	}
	return nil, chain.ErrNotFound
}

func (m *mockIndexer) AddressTransactions(ctx context.Context, address string) ([]chain.AddressTx, error) {
	if m.AddressTransactionsFn != nil {
		return m.AddressTransactionsFn(ctx, address)
	}
	return nil, nil
}

// mockPrices implements pricing.PriceService.
type mockPrices struct {
	AdaFn   func(ctx context.Context) (decimal.Decimal, error)
	TokenFn func(ctx context.Context, policyID, assetName string) (decimal.Decimal, error)
}

func (m *mockPrices) GetAdaPrice(ctx context.Context) (decimal.Decimal, error) {
	if m.AdaFn != nil {
		return m.AdaFn(ctx)
	}
	return decimal.Zero, errors.New("no ada price")
}

func (m *mockPrices) GetTokenPrice(ctx context.Context, policyID, assetName string) (decimal.Decimal, error) {
	if m.TokenFn != nil {
		return m.TokenFn(ctx, policyID, assetName)
	}
	return decimal.Zero, errors.New("no token price")
}

// mockAudit records audit calls without a database.
type mockAudit struct {
	mu      sync.Mutex
	actions []string
}

func (m *mockAudit) Log(_ string, action models.AuditAction, resourceType, _, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, string(action)+":"+resourceType)
}

func (m *mockAudit) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.actions...)
}

func testSigner(t *testing.T) chain.Signer {
	t.Helper()
	s, err := chain.NewEd25519Signer(strings.Repeat("22", 32))
	if err != nil {
		t.Fatalf("creating signer: %v", err)
	}
	return s
}

// unsignedTx returns a minimal transaction with an empty witness set.
func unsignedTx(t *testing.T) string {
	t.Helper()
	body := map[uint64]any{0: []any{}, 1: []any{}, 2: uint64(180000)}
	raw, err := cbor.Marshal([]any{body, map[uint64]any{}, true, nil})
	if err != nil {
		t.Fatalf("encoding tx: %v", err)
	}
	return hex.EncodeToString(raw)
}

func walletUTXO(address, hash string, index int, lovelace int64, tokens ...chain.Amount) chain.UTXO {
	amounts := []chain.Amount{{Unit: chain.Lovelace, Quantity: itoa(lovelace)}}
	amounts = append(amounts, tokens...)
	return chain.UTXO{Address: address, TxHash: hash, OutputIndex: index, Amount: amounts}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

// createContribution inserts a created contribution carrying pending assets.
func createContribution(t *testing.T, db *gorm.DB, userID, vaultID string, amount int64, pending ...models.PendingAsset) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		VaultID:  &vaultID,
		UserID:   &userID,
		Type:     models.TransactionTypeContribute,
		Status:   models.TransactionStatusCreated,
		Amount:   amount,
		Metadata: datatypes.NewJSONType(models.TransactionMetadata{PendingAssets: pending}),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("creating contribution: %v", err)
	}
	return tx
}
