package approvalrequeststore

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Provider interface {
	Create(rec dbmodels.ApprovalRequest) (id string, err error)
	GetByID(orgID, id string) (rec *dbmodels.ApprovalRequest, err error)
	GetPendingByControl(orgID, controlID string) (rec *dbmodels.ApprovalRequest, err error)
	// LockControl takes a row lock on an active control until the transaction ends
	LockControl(orgID, controlID string) (found bool, err error)
	List(orgID string, status models.ApprovalStatus) (list []dbmodels.ApprovalRequest, err error)
	ListOverdue(now time.Time) (list []dbmodels.ApprovalRequest, err error)
	// Transition updates a pending request only if it is still at fromLevel.
	// Returns ok=false when another decision got there first.
	Transition(orgID, id string, fromLevel int, updMap map[string]interface{}) (ok bool, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Create(rec dbmodels.ApprovalRequest) (id string, err error) {
	err = i.db.
		Omit("Control", "WorkflowSteps").
		Create(&rec).
		Error
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

func (i impl) GetByID(orgID, id string) (*dbmodels.ApprovalRequest, error) {
	rec := dbmodels.ApprovalRequest{}
	err := i.db.
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Preload("Control").
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

func (i impl) GetPendingByControl(orgID, controlID string) (*dbmodels.ApprovalRequest, error) {
	rec := dbmodels.ApprovalRequest{}
	err := i.db.
		Where("org_id = ?", orgID).
		Where("control_id = ?", controlID).
		Where("status = ?", models.ApprovalStatusPending).
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

func (i impl) LockControl(orgID, controlID string) (bool, error) {
	rec := dbmodels.Control{}
	err := i.db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", controlID).
		Where("org_id = ?", orgID).
		Where("is_active = ?", true).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (i impl) List(orgID string, status models.ApprovalStatus) (list []dbmodels.ApprovalRequest, err error) {
	list = []dbmodels.ApprovalRequest{}
	tx := i.db.
		Where("org_id = ?", orgID)
	if status != "" {
		tx = tx.Where("status = ?", status)
	}
	err = tx.
		Order("requested_date DESC").
		Preload("Control").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) ListOverdue(now time.Time) (list []dbmodels.ApprovalRequest, err error) {
	list = []dbmodels.ApprovalRequest{}
	err = i.db.
		Where("status = ?", models.ApprovalStatusPending).
		Where("due_date IS NOT NULL").
		Where("due_date < ?", now).
		Order("due_date ASC").
		Find(&list).
		Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (i impl) Transition(orgID, id string, fromLevel int, updMap map[string]interface{}) (bool, error) {
	if len(updMap) == 0 {
		return false, errors.New("empty transition")
	}
	tx := i.db.
		Model(&dbmodels.ApprovalRequest{}).
		Where("id = ?", id).
		Where("org_id = ?", orgID).
		Where("status = ?", models.ApprovalStatusPending).
		Where("current_level = ?", fromLevel).
		Updates(updMap)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
