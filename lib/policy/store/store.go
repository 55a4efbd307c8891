package policystore

import (
	policyapimodels "grc-backend/models/api/policy"
	dbmodels "grc-backend/models/db"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.Policy) (id string, err error)
	GetByID(orgID, id string) (rec *dbmodels.Policy, err error)
	List(orgID string, filter policyapimodels.PolicyFilter) (list []dbmodels.Policy, err error)
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

func (i impl) Create(rec dbmodels.Policy) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(orgID, id string) (*dbmodels.Policy, error) {
	rec := dbmodels.Policy{}
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

func (i impl) List(orgID string, filter policyapimodels.PolicyFilter) (list []dbmodels.Policy, err error) {
	list = []dbmodels.Policy{}
	tx := i.db.
		Where("org_id = ?", orgID).
		Where("is_active = ?", true)
	if filter.PolicyType != "" {
		tx = tx.Where("policy_type = ?", strings.ToLower(filter.PolicyType))
	}
	err = tx.
		Order("name").
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
		Model(&dbmodels.Policy{}).
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Updates(updMap)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.New("policy not found")
	}
	return nil
}
