// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	// Shelley bech32 payment addresses, mainnet and test networks.
	cardanoAddressRegex = regexp.MustCompile(`^(addr|addr_test)1[02-9ac-hj-np-z]{50,110}$`)
	policyIDRegex       = regexp.MustCompile(`^[0-9a-f]{56}$`)
	hexRegex            = regexp.MustCompile(`^([0-9a-fA-F]{2})*$`)
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	_ = v.RegisterValidation("cardano_address", validateCardanoAddress)
	_ = v.RegisterValidation("policy_id", validatePolicyID)
	_ = v.RegisterValidation("hex", validateHex)
	_ = v.RegisterValidation("tx_status", validateTxStatus)
	_ = v.RegisterValidation("claim_status", validateClaimStatus)
	_ = v.RegisterValidation("asset_type", validateAssetType)
}

func validateCardanoAddress(fl validator.FieldLevel) bool {
	return cardanoAddressRegex.MatchString(fl.Field().String())
}

func validatePolicyID(fl validator.FieldLevel) bool {
	return policyIDRegex.MatchString(fl.Field().String())
}

func validateHex(fl validator.FieldLevel) bool {
	return hexRegex.MatchString(fl.Field().String())
}

func validateTxStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "created", "submitted", "pending", "confirmed", "failed", "stuck":
		return true
	}
	return false
}

func validateClaimStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "available", "pending", "claimed":
		return true
	}
	return false
}

func validateAssetType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ada", "ft", "nft":
		return true
	}
	return false
}
