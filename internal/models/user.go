package models

// User is the slice of the user profile the settlement engine needs: the
// wallet address on file, used to authorize change addresses and to resolve
// signers.
type User struct {
	Base
	Address      string `gorm:"uniqueIndex;not null" json:"address"`
	StakeAddress string `gorm:"index" json:"stake_address,omitempty"`
	Name         string `json:"name"`
}
