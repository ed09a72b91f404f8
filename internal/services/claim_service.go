package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
	"vaultflow/internal/pagination"
)

// claimService exposes claims to their owners.
type claimService struct {
	db *gorm.DB
}

// NewClaimService creates a new ClaimServicer.
func NewClaimService(db *gorm.DB) ClaimServicer {
	return &claimService{db: db}
}

// GetUserClaims retrieves a paginated, filtered list of the user's claims.
func (s *claimService) GetUserClaims(userID string, filter ClaimFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Claim], error) {
	page.Defaults()

	base := s.db.Model(&models.Claim{}).Where("user_id = ?", userID)
	base = applyClaimFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var claims []models.Claim
	if err := base.Scopes(pagination.Paginate(page)).Find(&claims).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(claims, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyClaimFilters(q *gorm.DB, f ClaimFilter) *gorm.DB {
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	if f.VaultID != nil {
		q = q.Where("vault_id = ?", *f.VaultID)
	}
	return q
}

// GetClaim retrieves a claim owned by userID.
func (s *claimService) GetClaim(userID, claimID string) (*models.Claim, error) {
	var claim models.Claim
	if err := s.db.Where("id = ? AND user_id = ?", claimID, userID).First(&claim).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrClaimNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &claim, nil
}
