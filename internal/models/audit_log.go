package models

// AuditLog records transaction creations and imports.
type AuditLog struct {
	Base
	Action       string `gorm:"size:64;not null;index" json:"action"`
	ResourceType string `gorm:"size:64;not null" json:"resource_type"`
	ResourceID   string `gorm:"size:64" json:"resource_id"`
	Changes      string `json:"changes,omitempty"`
}
