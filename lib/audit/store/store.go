package auditstore

import (
	dbmodels "grc-backend/models/db"

	"gorm.io/gorm"
)

// Provider audit log is append-only
type Provider interface {
	Create(rec dbmodels.AuditEvent) (id string, err error)
	ListByResource(orgID, resourceType, resourceID string) (list []dbmodels.AuditEvent, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.AuditEvent) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) ListByResource(orgID, resourceType, resourceID string) (list []dbmodels.AuditEvent, err error) {
	list = []dbmodels.AuditEvent{}
	err = i.db.
		Where("org_id = ?", orgID).
		Where("resource_type = ?", resourceType).
		Where("resource_id = ?", resourceID).
		Order("timestamp ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
