package controlstore

import (
	controlapimodels "grc-backend/models/api/control"
	dbmodels "grc-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Control) (id string, err error)
	GetByID(orgID, id string) (rec *dbmodels.Control, err error)
	List(orgID string, filter controlapimodels.ControlFilter) (list []dbmodels.Control, err error)
	Count(orgID string) (int64, error)
	Update(orgID, id string, updMap map[string]interface{}) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.Control) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(orgID, id string) (*dbmodels.Control, error) {
	rec := dbmodels.Control{}
	err := i.db.
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) List(orgID string, filter controlapimodels.ControlFilter) (list []dbmodels.Control, err error) {
	list = []dbmodels.Control{}
	tx := i.db.
		Where("org_id = ?", orgID).
		Where("is_active = ?", true)
	if filter.FrameworkCode != "" {
		tx = tx.Where("framework_code = ?", strings.ToUpper(filter.FrameworkCode))
	}
	if filter.Severity != "" {
		tx = tx.Where("severity = ?", strings.ToLower(filter.Severity))
	}
	err = tx.
		Order("internal_code").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Count(orgID string) (int64, error) {
	var count int64
	err := i.db.
		Model(&dbmodels.Control{}).
		Where("org_id = ?", orgID).
		Count(&count).
		Error
	return count, err
}

func (i impl) Update(orgID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.Control{}).
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.New("control not found")
	}
	return nil
}
