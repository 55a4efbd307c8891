package mappingstore

import (
	dbmodels "grc-backend/models/db"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type Provider interface {
	Create(rec dbmodels.ControlMapping) (id string, err error)
	GetByID(orgID, id string) (rec *dbmodels.ControlMapping, err error)
	GetByPair(orgID, sourceID, targetID string) (rec *dbmodels.ControlMapping, err error)
	// ListByControl mappings where the control is on either side
	ListByControl(orgID, controlID string) (list []dbmodels.ControlMapping, err error)
	Delete(orgID, id string) error
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ControlMapping) (id string, err error) {
	err = i.db.
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(orgID, id string) (*dbmodels.ControlMapping, error) {
	return i.first(i.db.
		Where("id = ?", id).
		Where("org_id = ?", orgID))
}

// GetByPair either direction, a-b and b-a are the same mapping
func (i impl) GetByPair(orgID, sourceID, targetID string) (*dbmodels.ControlMapping, error) {
	return i.first(i.db.
		Where("org_id = ?", orgID).
		Where("(source_control_id = ? AND target_control_id = ?) OR (source_control_id = ? AND target_control_id = ?)",
			sourceID, targetID, targetID, sourceID))
}

func (i impl) first(tx *gorm.DB) (*dbmodels.ControlMapping, error) {
	rec := dbmodels.ControlMapping{}
	err := tx.
		Preload("SourceControl").
		Preload("TargetControl").
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

func (i impl) ListByControl(orgID, controlID string) (list []dbmodels.ControlMapping, err error) {
	list = []dbmodels.ControlMapping{}
	err = i.db.
		Preload("SourceControl").
		Preload("TargetControl").
		Where("org_id = ?", orgID).
		Where("source_control_id = ? OR target_control_id = ?", controlID, controlID).
		Order("created_at").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Delete(orgID, id string) error {
	tx := i.db.
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Delete(&dbmodels.ControlMapping{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return errors.New("mapping not found")
	}
	return nil
}
