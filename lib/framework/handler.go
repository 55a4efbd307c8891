package frameworkhandler

import (
	"context"
	"grc-backend/db"
	audithandler "grc-backend/lib/audit"
	frameworkstore "grc-backend/lib/framework/store"
	"grc-backend/lib/utils/lock"
	"grc-backend/models"
	frameworkapimodels "grc-backend/models/api/framework"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(orgID, userID string, data frameworkapimodels.FrameworkData) (frameworkapimodels.FrameworkView, error)
	Get(orgID, code string) (frameworkapimodels.FrameworkView, error)
	List(orgID string, filter frameworkapimodels.FrameworkFilter) ([]frameworkapimodels.FrameworkView, error)
	Update(orgID, userID, code string, data frameworkapimodels.FrameworkUpdate) (frameworkapimodels.FrameworkView, error)
	Delete(orgID, userID, code string) error
}

type AuditRecorder interface {
	Record(event dbmodels.AuditEvent) error
}

var Instance Provider

const codeLockWait = 5 * time.Second

func NewHandler() {
	Instance = NewInstance(frameworkstore.NewInstance(db.DB), audithandler.Instance)
}

func NewInstance(store frameworkstore.Provider, auditor AuditRecorder) Provider {
	return impl{
		store:   store,
		auditor: auditor,
	}
}

type impl struct {
	store   frameworkstore.Provider
	auditor AuditRecorder
}

func (i impl) Create(orgID, userID string, data frameworkapimodels.FrameworkData) (frameworkapimodels.FrameworkView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID)
	if err := data.Validate(); err != nil {
		return frameworkapimodels.FrameworkView{}, models.NewInvalidArgument(err.Error())
	}
	code := strings.ToUpper(data.Code)
	var rec dbmodels.Framework
	ok, err := lock.WithDelay(context.Background(), "framework-code-"+orgID+"-"+code, codeLockWait, func() error {
		existing, err := i.store.GetByCode(orgID, code)
		if err != nil {
			logger.WithError(err).Error("error getting framework")
			return err
		}
		if existing != nil {
			return models.NewConflict("Framework with code " + code + " already exists")
		}
		rec = dbmodels.Framework{
			BaseOrgModel: dbmodels.BaseOrgModel{
				OrgID: orgID,
			},
			Code:          code,
			Name:          strings.TrimSpace(data.Name),
			Version:       data.Version,
			Region:        data.Region,
			Description:   data.Description,
			EffectiveDate: data.EffectiveDate,
			IsActive:      true,
			IsCustom:      data.IsCustom,
		}
		id, err := i.store.Create(rec)
		if err != nil {
			logger.WithError(err).Error("error creating framework")
			return errors.Wrap(err, "error creating framework")
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return frameworkapimodels.FrameworkView{}, err
	}
	if !ok {
		return frameworkapimodels.FrameworkView{}, models.NewConflict("Framework creation is busy, retry later")
	}
	logger.
		WithField("framework_id", rec.ID).
		WithField("code", code).
		Info("framework created")
	i.record(orgID, userID, rec.ID, "create", map[string]any{"code": code})
	return frameworkapimodels.FrameworkConvert(rec), nil
}

func (i impl) Get(orgID, code string) (frameworkapimodels.FrameworkView, error) {
	rec, err := i.getRec(orgID, code)
	if err != nil {
		return frameworkapimodels.FrameworkView{}, err
	}
	if rec == nil || !rec.IsActive {
		return frameworkapimodels.FrameworkView{}, models.NewNotFound("Framework not found")
	}
	return frameworkapimodels.FrameworkConvert(*rec), nil
}

func (i impl) List(orgID string, filter frameworkapimodels.FrameworkFilter) ([]frameworkapimodels.FrameworkView, error) {
	list, err := i.store.List(orgID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]frameworkapimodels.FrameworkView, 0, len(list))
	for _, rec := range list {
		result = append(result, frameworkapimodels.FrameworkConvert(rec))
	}
	return result, nil
}

// Update inactive frameworks can be updated too, is_active=true restores them
func (i impl) Update(orgID, userID, code string, data frameworkapimodels.FrameworkUpdate) (frameworkapimodels.FrameworkView, error) {
	if err := data.Validate(); err != nil {
		return frameworkapimodels.FrameworkView{}, models.NewInvalidArgument(err.Error())
	}
	updMap := data.UpdMap()
	if len(updMap) == 0 {
		return frameworkapimodels.FrameworkView{}, models.NewInvalidArgument("nothing to update")
	}
	rec, err := i.getRec(orgID, code)
	if err != nil {
		return frameworkapimodels.FrameworkView{}, err
	}
	if rec == nil {
		return frameworkapimodels.FrameworkView{}, models.NewNotFound("Framework not found")
	}
	err = i.store.Update(orgID, rec.ID, updMap)
	if err != nil {
		return frameworkapimodels.FrameworkView{}, errors.Wrap(err, "error updating framework")
	}
	log.
		WithField("org_id", orgID).
		WithField("framework_id", rec.ID).
		Info("framework updated")
	i.record(orgID, userID, rec.ID, "update", updMap)
	updated, err := i.getRec(orgID, code)
	if err != nil {
		return frameworkapimodels.FrameworkView{}, err
	}
	if updated == nil {
		return frameworkapimodels.FrameworkView{}, models.NewNotFound("Framework not found")
	}
	return frameworkapimodels.FrameworkConvert(*updated), nil
}

// Delete soft delete, controls keep their framework code
func (i impl) Delete(orgID, userID, code string) error {
	rec, err := i.getRec(orgID, code)
	if err != nil {
		return err
	}
	if rec == nil || !rec.IsActive {
		return models.NewNotFound("Framework not found")
	}
	err = i.store.Update(orgID, rec.ID, map[string]interface{}{"is_active": false})
	if err != nil {
		return errors.Wrap(err, "error deleting framework")
	}
	log.
		WithField("org_id", orgID).
		WithField("framework_id", rec.ID).
		Info("framework deactivated")
	i.record(orgID, userID, rec.ID, "delete", map[string]any{"code": rec.Code})
	return nil
}

func (i impl) getRec(orgID, code string) (*dbmodels.Framework, error) {
	rec, err := i.store.GetByCode(orgID, strings.ToUpper(code))
	if err != nil {
		log.
			WithField("org_id", orgID).
			WithField("code", code).
			WithError(err).
			Error("error getting framework")
		return nil, err
	}
	return rec, nil
}

func (i impl) record(orgID, userID, frameworkID, action string, meta map[string]any) {
	if i.auditor == nil {
		return
	}
	event := dbmodels.AuditEvent{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		EventType:    models.AuditFrameworkUpdate,
		ResourceType: models.AuditResourceFramework,
		ResourceID:   frameworkID,
		Action:       action,
		UserID:       userID,
		Timestamp:    time.Now().UTC(),
		Metadata:     meta,
	}
	if err := i.auditor.Record(event); err != nil {
		log.WithField("framework_id", frameworkID).WithError(err).Error("error recording audit event")
	}
}
