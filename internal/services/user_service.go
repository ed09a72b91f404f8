package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "vaultflow/internal/errors"
	"vaultflow/internal/models"
)

// userService handles user lookups.
type userService struct {
	db *gorm.DB
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB) UserServicer {
	return &userService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(id string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// FindByAddress resolves the user holding a wallet address.
func (s *userService) FindByAddress(address string) (*models.User, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "address is required")
	}

	var user models.User
	if err := s.db.Where("address = ?", address).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}
