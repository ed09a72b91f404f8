package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
	"vaultflow/internal/pagination"
	"vaultflow/internal/services"
)

// ClaimHandler exposes a user's claims and builds claim transactions.
type ClaimHandler struct {
	claims   services.ClaimServicer
	composer services.ComposerServicer
}

// NewClaimHandler creates a new ClaimHandler.
func NewClaimHandler(claims services.ClaimServicer, composer services.ComposerServicer) *ClaimHandler {
	return &ClaimHandler{claims: claims, composer: composer}
}

// ClaimQuery holds the optional filters for listing claims.
type ClaimQuery struct {
	pagination.PageRequest
	Status  string `form:"status" binding:"omitempty,claim_status"`
	VaultID string `form:"vault_id" binding:"omitempty,uuid"`
}

// BuildClaimRequest names the wallet receiving the vault tokens.
type BuildClaimRequest struct {
	ChangeAddress string `json:"change_address" binding:"required,cardano_address"`
}

// GetUserClaims lists the caller's claims
// @Summary     List claims
// @Description Get a paginated list of the authenticated user's claims
// @Tags        claims
// @Produce     json
// @Security    BearerAuth
// @Param       status    query string false "Filter by claim status (available, pending, claimed)"
// @Param       vault_id  query string false "Filter by vault"
// @Param       page      query int    false "Page number (default 1)"
// @Param       page_size query int    false "Items per page (default 20, max 100)"
// @Param       order     query string false "Creation-time order (asc, desc; default desc)"
// @Success     200 {object} pagination.PageResponse[models.Claim] "Paginated claims"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /claims [get]
func (h *ClaimHandler) GetUserClaims(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q ClaimQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.ClaimFilter
	if q.Status != "" {
		status := models.ClaimStatus(q.Status)
		filter.Status = &status
	}
	if q.VaultID != "" {
		filter.VaultID = &q.VaultID
	}

	page, err := h.claims.GetUserClaims(userID, filter, q.PageRequest)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// BuildClaim builds and countersigns a claim transaction
// @Summary     Build a claim
// @Description Reserves an available claim and returns the countersigned transaction that mints its vault tokens
// @Tags        claims
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Claim ID"
// @Param       request body BuildClaimRequest true "Receiving wallet"
// @Success     200 {object} services.BuildResult "Presigned transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Change address mismatch"
// @Failure     404 {object} ErrorResponse "Claim not found"
// @Failure     409 {object} ErrorResponse "Claim not available"
// @Router      /claims/{id}/build [post]
func (h *ClaimHandler) BuildClaim(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	claimID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BuildClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.composer.BuildClaim(c.Request.Context(), userID, claimID, req.ChangeAddress)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
