package testutil

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
)

// AssertAppError checks that err is an *AppError with the expected error code.
func AssertAppError(t *testing.T, err error, expectedCode string) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertDecimal compares numerically, so "50" and "50.000000" match.
func AssertDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()

	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got.String())
	}
}

// AssertTransactionStatus reloads a transaction and checks its status.
func AssertTransactionStatus(t *testing.T, db *gorm.DB, id string, want models.TransactionStatus) {
	t.Helper()

	var tx models.Transaction
	if err := db.Where("id = ?", id).First(&tx).Error; err != nil {
		t.Fatalf("loading transaction %s: %v", id, err)
	}
	if tx.Status != want {
		t.Errorf("transaction %s: expected status %s, got %s", id, want, tx.Status)
	}
}
