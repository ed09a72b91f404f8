package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
	"vaultflow/internal/services"
)

const (
	defaultWaitTimeout = 60 * time.Second
	maxWaitTimeout     = 5 * time.Minute
)

// TransactionHandler handles transaction status requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService}
}

// WaitQuery holds the parameters of a blocking status wait.
type WaitQuery struct {
	Status         string `form:"status" binding:"omitempty,tx_status"`
	TimeoutSeconds int    `form:"timeout" binding:"omitempty,min=1,max=300"`
}

// GetTransaction returns one of the caller's transactions
// @Summary     Get a transaction
// @Description Get a transaction owned by the authenticated user
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.GetTransaction(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}

// WaitForTransaction blocks until a transaction reaches a status
// @Summary     Wait for a transaction status
// @Description Polls until the transaction reaches the target status (default confirmed), fails, or the timeout elapses
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id      path  string true  "Transaction ID"
// @Param       status  query string false "Target status (default confirmed)"
// @Param       timeout query int    false "Timeout in seconds (default 60, max 300)"
// @Success     200 {object} models.Transaction "Transaction at the target status"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction failed"
// @Failure     504 {object} ErrorResponse "Timed out"
// @Router      /transactions/{id}/wait [get]
func (h *TransactionHandler) WaitForTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q WaitQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	target := models.TransactionStatusConfirmed
	if q.Status != "" {
		target = models.TransactionStatus(q.Status)
	}
	timeout := defaultWaitTimeout
	if q.TimeoutSeconds > 0 {
		timeout = min(time.Duration(q.TimeoutSeconds)*time.Second, maxWaitTimeout)
	}

	// Ownership check before blocking.
	if _, err := h.transactionService.GetTransaction(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	tx, err := h.transactionService.WaitForTransactionStatus(c.Request.Context(), id, target, timeout)
	if err != nil {
		if errors.Is(err, apperrors.ErrTransactionFailed) && tx != nil {
			c.JSON(apperrors.ErrTransactionFailed.StatusCode, gin.H{
				"error": gin.H{
					"code":    apperrors.ErrTransactionFailed.Code,
					"message": apperrors.ErrTransactionFailed.Message,
				},
				"transaction": tx,
			})
			return
		}
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": tx})
}
