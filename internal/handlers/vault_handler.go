package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
	"vaultflow/internal/services"
)

// VaultHandler handles vault contribution requests.
type VaultHandler struct {
	composer services.ComposerServicer
}

// NewVaultHandler creates a new VaultHandler.
func NewVaultHandler(composer services.ComposerServicer) *VaultHandler {
	return &VaultHandler{composer: composer}
}

// ContributionAssetRequest describes one token to contribute.
type ContributionAssetRequest struct {
	Type      models.AssetType `json:"type" binding:"required,asset_type"`
	PolicyID  string           `json:"policy_id" binding:"required,policy_id"`
	AssetName string           `json:"asset_name" binding:"omitempty,hex"`
	Quantity  int64            `json:"quantity" binding:"required,gt=0"`
	Decimals  int              `json:"decimals" binding:"min=0,max=18"`
}

// CreateContributionRequest represents the request payload for a contribution.
type CreateContributionRequest struct {
	Lovelace int64                      `json:"lovelace" binding:"min=0"`
	Assets   []ContributionAssetRequest `json:"assets" binding:"omitempty,max=50,dive"`
}

// CreateContribution records a contribution intent for a vault
// @Summary     Create a contribution
// @Description Records the ADA and tokens a user intends to contribute; the transaction is built separately
// @Tags        vaults
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                    true "Vault ID"
// @Param       request body CreateContributionRequest true "Contribution"
// @Success     201 {object} models.Transaction "Created transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Vault not found"
// @Failure     409 {object} ErrorResponse "Vault not accepting contributions"
// @Router      /vaults/{id}/contributions [post]
func (h *VaultHandler) CreateContribution(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	vaultID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input := services.ContributionInput{Lovelace: req.Lovelace}
	for _, a := range req.Assets {
		input.Assets = append(input.Assets, models.PendingAsset{
			Type:      a.Type,
			PolicyID:  a.PolicyID,
			AssetName: a.AssetName,
			Quantity:  a.Quantity,
			Decimals:  a.Decimals,
		})
	}

	tx, err := h.composer.CreateContribution(userID, vaultID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": tx})
}
