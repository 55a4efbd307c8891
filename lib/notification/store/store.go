package notificationstore

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Notification) (id string, err error)
	List(orgID, userID string, role models.UserRole, limit int) (list []dbmodels.Notification, err error)
	ListUndelivered(orgID, userID string) (list []dbmodels.Notification, err error)
	MarkDelivered(ids []string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Notification) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(orgID, userID string, role models.UserRole, limit int) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	err = i.db.
		Where("org_id = ?", orgID).
		Where(i.db.Where("to_user_id = ?", userID).Or("to_role = ?", role)).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListUndelivered(orgID, userID string) (list []dbmodels.Notification, err error) {
	list = []dbmodels.Notification{}
	err = i.db.
		Where("org_id = ?", orgID).
		Where("to_user_id = ?", userID).
		Where("delivered = ?", false).
		Order("created_at ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) MarkDelivered(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return i.db.
		Model(&dbmodels.Notification{}).
		Where("id in (?)", ids).
		Update("delivered", true).
		Error
}
