package models

import "gorm.io/datatypes"

// AuditAction names what a user or the system did to a resource.
type AuditAction string

const (
	AuditActionCreate     AuditAction = "CREATE"
	AuditActionBuild      AuditAction = "BUILD"
	AuditActionSubmit     AuditAction = "SUBMIT"
	AuditActionClosePhase AuditAction = "CLOSE_PHASE"
)

// AuditLog records chain operations (builds, submissions, phase closes).
// System-initiated entries carry an empty UserID.
type AuditLog struct {
	Base
	UserID       string            `gorm:"index" json:"user_id,omitempty"`
	Action       AuditAction       `gorm:"not null" json:"action"`
	ResourceType string            `gorm:"not null" json:"resource_type"`
	ResourceID   string            `gorm:"index" json:"resource_id"`
	IPAddress    string            `json:"ip_address,omitempty"`
	Changes      datatypes.JSONMap `json:"changes,omitempty"`
}
