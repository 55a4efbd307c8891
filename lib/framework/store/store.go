package frameworkstore

import (
	frameworkapimodels "grc-backend/models/api/framework"
	dbmodels "grc-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Framework) (id string, err error)
	GetByCode(orgID, code string) (rec *dbmodels.Framework, err error)
	List(orgID string, filter frameworkapimodels.FrameworkFilter) (list []dbmodels.Framework, err error)
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

func (i impl) Create(rec dbmodels.Framework) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// GetByCode inactive frameworks included, codes stay taken after a soft delete
func (i impl) GetByCode(orgID, code string) (*dbmodels.Framework, error) {
	rec := dbmodels.Framework{}
	err := i.db.
		Where("code = ?", code).
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

func (i impl) List(orgID string, filter frameworkapimodels.FrameworkFilter) (list []dbmodels.Framework, err error) {
	list = []dbmodels.Framework{}
	tx := i.db.
		Where("org_id = ?", orgID).
		Where("is_active = ?", true)
	if filter.Region != "" {
		tx = tx.Where("region = ?", filter.Region)
	}
	if filter.IsCustom != nil {
		tx = tx.Where("is_custom = ?", *filter.IsCustom)
	}
	err = tx.
		Order("code").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Update(orgID, id string, updMap map[string]interface{}) error {
	if len(updMap) == 0 {
		return nil
	}
	tx := i.db.
		Model(&dbmodels.Framework{}).
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.New("framework not found")
	}
	return nil
}
