package dbmodels

import (
	"grc-backend/models"
	"time"

	"github.com/pkg/errors"
)

type AuditEvent struct {
	BaseOrgModel
	EventType    models.AuditEventType `gorm:"type:varchar(100);index"`
	ResourceType string                `gorm:"type:varchar(50);index:idx_audit_resource"`
	ResourceID   string                `gorm:"type:varchar(36);index:idx_audit_resource"`
	Action       string                `gorm:"type:varchar(50)"`
	UserID       string                `gorm:"type:varchar(36)"`
	Timestamp    time.Time
	Metadata     map[string]any `gorm:"serializer:json"`
}

func (a AuditEvent) Validate() error {
	if a.EventType == "" {
		return errors.New("audit event type is empty")
	}
	if a.ResourceType == "" || a.ResourceID == "" {
		return errors.New("audit event resource is empty")
	}
	return nil
}
