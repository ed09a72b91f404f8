package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vaultflow/internal/services"
)

// PipelineHandler serves operator endpoints guarded by the pipeline API key.
type PipelineHandler struct {
	transactions services.TransactionServicer
	distribution services.DistributionServicer
	valuation    services.ValuationServicer
}

// NewPipelineHandler creates a new PipelineHandler.
func NewPipelineHandler(transactions services.TransactionServicer, distribution services.DistributionServicer, valuation services.ValuationServicer) *PipelineHandler {
	return &PipelineHandler{transactions: transactions, distribution: distribution, valuation: valuation}
}

// SyncVault reconciles a vault's in-flight transactions against the chain
// @Summary     Reconcile a vault
// @Description Compares the vault contract history with unconfirmed local transactions and applies confirmations, failures and stuck markers
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       id        path   string true "Vault ID"
// @Success     200 {object} services.SyncResult "Sweep summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Vault not found"
// @Failure     502 {object} ErrorResponse "Indexer unavailable"
// @Router      /pipeline/vaults/{id}/sync [post]
func (h *PipelineHandler) SyncVault(c *gin.Context) {
	vaultID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactions.SyncVaultTransactions(c.Request.Context(), vaultID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CloseProposal closes an expansion phase and issues its claims
// @Summary     Close an expansion phase
// @Description Computes vault-token claims for the phase's contributions, appends multipliers and marks the proposal executed
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       id        path   string true "Proposal ID"
// @Success     200 {object} services.CloseResult "Close summary"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Proposal not found"
// @Failure     409 {object} ErrorResponse "Phase not closable"
// @Router      /pipeline/proposals/{id}/close [post]
func (h *PipelineHandler) CloseProposal(c *gin.Context) {
	proposalID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.distribution.CloseExpansion(c.Request.Context(), proposalID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// RevalueVault recomputes a vault's cached valuation from its locked assets
// @Summary     Revalue a vault
// @Description Recomputes total asset cost and reserve requirements from the full locked-asset set at current prices
// @Tags        pipeline
// @Produce     json
// @Param       X-API-Key header string true "Pipeline API key"
// @Param       id        path   string true "Vault ID"
// @Success     200 {object} map[string]interface{} "Updated vault"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Vault not found"
// @Router      /pipeline/vaults/{id}/revalue [post]
func (h *PipelineHandler) RevalueVault(c *gin.Context) {
	vaultID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	vault, err := h.valuation.RecalculateVaultValuation(c.Request.Context(), vaultID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vault": vault})
}
