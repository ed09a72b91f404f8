package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/transactions/:id", handler.GetTransaction)
	auth.GET("/transactions/:id/wait", handler.WaitForTransaction)
	return r
}

func TestTransactionHandler_GetTransaction(t *testing.T) {
	t.Run("returns 200", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "GET", "/transactions/"+testUUID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["id"] != testUUID {
			t.Errorf("unexpected id %v", tx["id"])
		}
	})

	t.Run("returns 404 for another user's transaction", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionFn: func(string, string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

		rec := doRequest(r, "GET", "/transactions/abc", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_WaitForTransaction(t *testing.T) {
	t.Run("defaults to confirmed and 60s", func(t *testing.T) {
		var gotTarget models.TransactionStatus
		var gotTimeout time.Duration
		svc := &mockTransactionService{
			waitFn: func(_ context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error) {
				gotTarget, gotTimeout = target, timeout
				return &models.Transaction{Base: models.Base{ID: id}, Status: target}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotTarget != models.TransactionStatusConfirmed || gotTimeout != defaultWaitTimeout {
			t.Errorf("unexpected wait params %s %v", gotTarget, gotTimeout)
		}
	})

	t.Run("honors query parameters", func(t *testing.T) {
		var gotTarget models.TransactionStatus
		var gotTimeout time.Duration
		svc := &mockTransactionService{
			waitFn: func(_ context.Context, id string, target models.TransactionStatus, timeout time.Duration) (*models.Transaction, error) {
				gotTarget, gotTimeout = target, timeout
				return &models.Transaction{Base: models.Base{ID: id}, Status: target}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait?status=submitted&timeout=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotTarget != models.TransactionStatusSubmitted || gotTimeout != 5*time.Second {
			t.Errorf("unexpected wait params %s %v", gotTarget, gotTimeout)
		}
	})

	queries := []struct {
		query      string
		wantStatus int
	}{
		{"?status=settled", http.StatusBadRequest},
		{"?timeout=301", http.StatusBadRequest},
		{"?timeout=-1", http.StatusBadRequest},
		{"?timeout=0", http.StatusOK},
	}
	for _, tt := range queries {
		t.Run("query "+tt.query, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}))

			rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait"+tt.query, "")

			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	t.Run("returns failed transaction with 409", func(t *testing.T) {
		svc := &mockTransactionService{
			waitFn: func(_ context.Context, id string, _ models.TransactionStatus, _ time.Duration) (*models.Transaction, error) {
				return &models.Transaction{Base: models.Base{ID: id}, Status: models.TransactionStatusStuck}, apperrors.ErrTransactionFailed
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait", "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		body := parseJSON(t, rec)
		assertErrorCode(t, body, "TRANSACTION_FAILED")
		if tx := body["transaction"].(map[string]interface{}); tx["status"] != "stuck" {
			t.Errorf("expected stuck transaction in body, got %v", tx)
		}
	})

	t.Run("returns 504 on timeout", func(t *testing.T) {
		svc := &mockTransactionService{
			waitFn: func(context.Context, string, models.TransactionStatus, time.Duration) (*models.Transaction, error) {
				return nil, apperrors.Wrap(apperrors.ErrWaitTimeout, context.DeadlineExceeded)
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait", "")

		if rec.Code != http.StatusGatewayTimeout {
			t.Fatalf("expected 504, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "WAIT_TIMEOUT")
	})

	t.Run("does not wait on another user's transaction", func(t *testing.T) {
		waited := false
		svc := &mockTransactionService{
			getTransactionFn: func(string, string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
			waitFn: func(context.Context, string, models.TransactionStatus, time.Duration) (*models.Transaction, error) {
				waited = true
				return nil, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(svc))

		rec := doRequest(r, "GET", "/transactions/"+testUUID+"/wait", "")

		if rec.Code != http.StatusNotFound || waited {
			t.Fatalf("expected 404 without waiting, got %d waited=%v", rec.Code, waited)
		}
	})
}
