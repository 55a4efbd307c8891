package evidencestore

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.EvidenceFile) (id string, err error)
	GetByID(orgID, id string) (rec *dbmodels.EvidenceFile, err error)
	List(orgID, controlID string, source models.EvidenceSource) (list []dbmodels.EvidenceFile, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.EvidenceFile) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(orgID, id string) (*dbmodels.EvidenceFile, error) {
	rec := dbmodels.EvidenceFile{}
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

func (i impl) List(orgID, controlID string, source models.EvidenceSource) (list []dbmodels.EvidenceFile, err error) {
	list = []dbmodels.EvidenceFile{}
	tx := i.db.
		Where("org_id = ?", orgID)
	if controlID != "" {
		tx = tx.Where("control_id = ?", controlID)
	}
	if source != "" {
		tx = tx.Where("source = ?", source)
	}
	err = tx.
		Order("uploaded_date DESC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}
