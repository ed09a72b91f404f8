package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vaultflow/internal/logger"
	"vaultflow/internal/models"
	"vaultflow/internal/pagination"
	"vaultflow/internal/services"
	"vaultflow/internal/validator"
	"vaultflow/internal/webhooks"
)

// --- mock services ---

type mockComposerService struct {
	createContributionFn func(userID, vaultID string, input services.ContributionInput) (*models.Transaction, error)
	buildContributionFn  func(ctx context.Context, userID string, input services.BuildContributionInput) (*services.BuildResult, error)
	buildClaimFn         func(ctx context.Context, userID, claimID, changeAddress string) (*services.BuildResult, error)
	submitTransactionFn  func(ctx context.Context, userID string, input services.SubmitInput) (*services.SubmitResult, error)
}

func (m *mockComposerService) CreateContribution(userID, vaultID string, input services.ContributionInput) (*models.Transaction, error) {
	if m.createContributionFn != nil {
		return m.createContributionFn(userID, vaultID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockComposerService) BuildContribution(ctx context.Context, userID string, input services.BuildContributionInput) (*services.BuildResult, error) {
	if m.buildContributionFn != nil {
		return m.buildContributionFn(ctx, userID, input)
	}
	return &services.BuildResult{}, nil
}

func (m *mockComposerService) BuildClaim(ctx context.Context, userID, claimID, changeAddress string) (*services.BuildResult, error) {
	if m.buildClaimFn != nil {
		return m.buildClaimFn(ctx, userID, claimID, changeAddress)
	}
	return &services.BuildResult{}, nil
}

func (m *mockComposerService) SubmitTransaction(ctx context.Context, userID string, input services.SubmitInput) (*services.SubmitResult, error) {
	if m.submitTransactionFn != nil {
		return m.submitTransactionFn(ctx, userID, input)
	}
	return &services.SubmitResult{}, nil
}

type mockWebhookService struct {
	verifyAndHandleFn func(ctx context.Context, header string, body []byte) (*services.WebhookResult, error)
}

func (m *mockWebhookService) VerifyAndHandle(ctx context.Context, header string, body []byte) (*services.WebhookResult, error) {
	if m.verifyAndHandleFn != nil {
		return m.verifyAndHandleFn(ctx, header, body)
	}
	return &services.WebhookResult{Status: "ignored", Details: []services.TransitionDetail{}}, nil
}

func (m *mockWebhookService) HandleEvent(_ context.Context, _ *webhooks.Event) (*services.WebhookResult, error) {
	return &services.WebhookResult{Status: "ignored", Details: []services.TransitionDetail{}}, nil
}

type mockTransactionService struct {
	getTransactionFn func(userID, id string) (*models.Transaction, error)
	waitFn           func(ctx context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error)
	syncVaultFn      func(ctx context.Context, vaultID string) (*services.SyncResult, error)
	syncAllVaultsFn  func(ctx context.Context) (*services.SyncResult, error)
}

func (m *mockTransactionService) CreateTransaction(tx *models.Transaction) (*models.Transaction, error) {
	return tx, nil
}

func (m *mockTransactionService) GetTransaction(userID, id string) (*models.Transaction, error) {
	if m.getTransactionFn != nil {
		return m.getTransactionFn(userID, id)
	}
	return &models.Transaction{Base: models.Base{ID: id}, UserID: &userID}, nil
}

func (m *mockTransactionService) GetTransactionByHash(string) (*models.Transaction, error) {
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) MarkSubmitted(_ context.Context, id, _ string) (*models.Transaction, error) {
	return &models.Transaction{Base: models.Base{ID: id}}, nil
}

func (m *mockTransactionService) MarkFailed(context.Context, string, string) error { return nil }

func (m *mockTransactionService) ApplyStatus(_ context.Context, txHash string, status models.TransactionStatus) (*services.TransitionResult, error) {
	return &services.TransitionResult{TxHash: txHash, Status: status}, nil
}

func (m *mockTransactionService) WaitForTransactionStatus(ctx context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error) {
	if m.waitFn != nil {
		return m.waitFn(ctx, id, target, timeout)
	}
	return &models.Transaction{Base: models.Base{ID: id}, Status: target}, nil
}

func (m *mockTransactionService) SyncVaultTransactions(ctx context.Context, vaultID string) (*services.SyncResult, error) {
	if m.syncVaultFn != nil {
		return m.syncVaultFn(ctx, vaultID)
	}
	return &services.SyncResult{VaultsChecked: 1}, nil
}

func (m *mockTransactionService) SyncAllVaults(ctx context.Context) (*services.SyncResult, error) {
	if m.syncAllVaultsFn != nil {
		return m.syncAllVaultsFn(ctx)
	}
	return &services.SyncResult{}, nil
}

type mockClaimService struct {
	getUserClaimsFn func(userID string, filter services.ClaimFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Claim], error)
	getClaimFn      func(userID, claimID string) (*models.Claim, error)
}

func (m *mockClaimService) GetUserClaims(userID string, filter services.ClaimFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Claim], error) {
	if m.getUserClaimsFn != nil {
		return m.getUserClaimsFn(userID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Claim{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockClaimService) GetClaim(userID, claimID string) (*models.Claim, error) {
	if m.getClaimFn != nil {
		return m.getClaimFn(userID, claimID)
	}
	return &models.Claim{}, nil
}

type mockValuationService struct {
	recalculateFn func(ctx context.Context, vaultID string) (*models.Vault, error)
}

func (m *mockValuationService) RecalculateVaultValuation(ctx context.Context, vaultID string) (*models.Vault, error) {
	if m.recalculateFn != nil {
		return m.recalculateFn(ctx, vaultID)
	}
	return &models.Vault{Base: models.Base{ID: vaultID}}, nil
}

type mockDistributionService struct {
	closeExpansionFn func(ctx context.Context, proposalID string) (*services.CloseResult, error)
}

func (m *mockDistributionService) CloseExpansion(ctx context.Context, proposalID string) (*services.CloseResult, error) {
	if m.closeExpansionFn != nil {
		return m.closeExpansionFn(ctx, proposalID)
	}
	return &services.CloseResult{ProposalID: proposalID}, nil
}

func (m *mockDistributionService) CloseExpiredExpansions(context.Context, time.Time) (int, error) {
	return 0, nil
}

// verify interface compliance
var (
	_ services.ComposerServicer     = (*mockComposerService)(nil)
	_ services.WebhookServicer      = (*mockWebhookService)(nil)
	_ services.TransactionServicer  = (*mockTransactionService)(nil)
	_ services.ClaimServicer        = (*mockClaimService)(nil)
	_ services.DistributionServicer = (*mockDistributionService)(nil)
	_ services.ValuationServicer    = (*mockValuationService)(nil)
)

// --- test helpers ---

const (
	testUserID = "0190f5d2-0000-7000-8000-0000000000aa"
	testUUID   = "0190f5d2-0000-7000-8000-0000000000bb"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
