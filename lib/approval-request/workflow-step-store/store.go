package workflowstepstore

import (
	dbmodels "grc-backend/models/db"

	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.WorkflowStep) (id string, err error)
	List(requestID string) (list []dbmodels.WorkflowStep, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.WorkflowStep) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) List(requestID string) (list []dbmodels.WorkflowStep, err error) {
	list = []dbmodels.WorkflowStep{}
	err = i.db.
		Where("approval_request_id = ?", requestID).
		Order("level ASC").
		Order("decision_date ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
