package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/services"
)

// SignatureHeader carries the indexer's webhook signature.
const SignatureHeader = "blockfrost-signature"

const maxWebhookBody = 1 << 20

// BlockchainHandler exposes transaction building, submission and the
// indexer webhook.
type BlockchainHandler struct {
	composer services.ComposerServicer
	webhooks services.WebhookServicer
}

// NewBlockchainHandler creates a new BlockchainHandler.
func NewBlockchainHandler(composer services.ComposerServicer, webhooks services.WebhookServicer) *BlockchainHandler {
	return &BlockchainHandler{composer: composer, webhooks: webhooks}
}

// BuildContributionRequest identifies a created contribution and the wallet
// paying for it.
type BuildContributionRequest struct {
	TransactionID string `json:"transaction_id" binding:"required,uuid"`
	ChangeAddress string `json:"change_address" binding:"required,cardano_address"`
}

// SubmitTransactionRequest is a user-signed transaction.
type SubmitTransactionRequest struct {
	TransactionID string   `json:"transaction_id" binding:"required,uuid"`
	Transaction   string   `json:"transaction" binding:"required,hex"`
	Signatures    []string `json:"signatures" binding:"omitempty,dive,hex"`
}

// TxWebhook ingests a signed indexer delivery
// @Summary     Indexer transaction webhook
// @Description Verifies the blockfrost-signature header over the raw body and reconciles every vault-relevant transaction in the delivery
// @Tags        blockchain
// @Accept      json
// @Produce     json
// @Param       blockfrost-signature header string true "t=<unix>,v1=<hex hmac>"
// @Success     200 {object} services.WebhookResult "Per-transition outcomes"
// @Failure     400 {object} ErrorResponse "Malformed payload"
// @Failure     401 {object} ErrorResponse "Invalid signature"
// @Router      /blockchain/tx-webhook [post]
func (h *BlockchainHandler) TxWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Webhook payload too large"))
			return
		}
		respondWithError(c, apperrors.Wrap(apperrors.ErrInvalidInput, err))
		return
	}

	result, err := h.webhooks.VerifyAndHandle(c.Request.Context(), c.GetHeader(SignatureHeader), body)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Contribute builds and countersigns a contribution transaction
// @Summary     Build a contribution
// @Description Selects wallet UTxOs, builds the contribution and returns it countersigned by the vault admin key
// @Tags        blockchain
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body BuildContributionRequest true "Contribution to build"
// @Success     200 {object} services.BuildResult "Presigned transaction"
// @Failure     400 {object} ErrorResponse "Invalid input or insufficient funds"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Change address mismatch"
// @Failure     502 {object} ErrorResponse "Gateway unavailable"
// @Router      /blockchain/contribute [post]
func (h *BlockchainHandler) Contribute(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BuildContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.composer.BuildContribution(c.Request.Context(), userID, services.BuildContributionInput{
		TransactionID: req.TransactionID,
		ChangeAddress: req.ChangeAddress,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Submit sends a user-signed transaction to the network
// @Summary     Submit a signed transaction
// @Description Submits a countersigned transaction and records it as submitted
// @Tags        blockchain
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SubmitTransactionRequest true "Signed transaction"
// @Success     200 {object} services.SubmitResult "Transaction hash"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Already submitted or stale inputs"
// @Failure     422 {object} ErrorResponse "Rejected by the network"
// @Router      /blockchain/submit [post]
func (h *BlockchainHandler) Submit(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.composer.SubmitTransaction(c.Request.Context(), userID, services.SubmitInput{
		TransactionID: req.TransactionID,
		Transaction:   req.Transaction,
		Signatures:    req.Signatures,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
