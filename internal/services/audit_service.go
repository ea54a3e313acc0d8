package services

import (
	"context"
	"encoding/json"

	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/store"
)

// auditService handles audit log recording.
type auditService struct {
	audit store.AuditStore
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(audit store.AuditStore) AuditServicer {
	return &auditService{audit: audit}
}

// Log records an audit event. Errors are logged but never propagate
// to avoid disrupting the main operation.
func (s *auditService) Log(ctx context.Context, action, resourceType, resourceID string, changes map[string]any) {
	var changesJSON string
	if changes != nil {
		data, err := json.Marshal(changes)
		if err != nil {
			logger.Get().Errorw("failed to marshal audit log changes", "error", err, "action", action)
			changesJSON = "{}"
		} else {
			changesJSON = string(data)
		}
	}

	entry := &models.AuditLog{
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Changes:      changesJSON,
	}

	if err := s.audit.Create(ctx, entry); err != nil {
		logger.Get().Errorw("failed to create audit log entry",
			"error", err,
			"action", action,
			"resource_type", resourceType,
			"resource_id", resourceID,
		)
	}
}

// Audit actions.
const (
	AuditActionCreateTransaction = "CREATE_TRANSACTION"
	AuditActionImport            = "IMPORT_TRANSACTIONS"
)
