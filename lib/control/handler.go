package controlhandler

import (
	"context"
	"grc-backend/db"
	audithandler "grc-backend/lib/audit"
	mappingstore "grc-backend/lib/control/mapping-store"
	controlstore "grc-backend/lib/control/store"
	"grc-backend/lib/utils/lock"
	"grc-backend/models"
	controlapimodels "grc-backend/models/api/control"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(orgID, userID string, data controlapimodels.ControlData) (controlapimodels.ControlView, error)
	Get(orgID, id string) (controlapimodels.ControlView, error)
	List(orgID string, filter controlapimodels.ControlFilter) ([]controlapimodels.ControlView, error)
	Delete(orgID, userID, id string) error
	GetRec(orgID, id string) (*dbmodels.Control, error)
	ApplyStatus(orgID, id string, status models.ControlStatus) error
	AddMapping(orgID, userID, controlID string, data controlapimodels.MappingData) (controlapimodels.MappingView, error)
	ListMappings(orgID, controlID string) ([]controlapimodels.MappingView, error)
	DeleteMapping(orgID, userID, controlID, mappingID string) error
}

type AuditRecorder interface {
	Record(event dbmodels.AuditEvent) error
}

var Instance Provider

const codeLockWait = 5 * time.Second

func NewHandler() {
	Instance = NewInstance(controlstore.NewInstance(db.DB), mappingstore.NewInstance(db.DB), audithandler.Instance)
}

func NewInstance(store controlstore.Provider, mappings mappingstore.Provider, auditor AuditRecorder) Provider {
	return impl{
		store:    store,
		mappings: mappings,
		auditor:  auditor,
	}
}

type impl struct {
	store    controlstore.Provider
	mappings mappingstore.Provider
	auditor  AuditRecorder
}

func (i impl) Create(orgID, userID string, data controlapimodels.ControlData) (controlapimodels.ControlView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID)
	if err := data.Validate(); err != nil {
		return controlapimodels.ControlView{}, models.NewInvalidArgument(err.Error())
	}
	var rec dbmodels.Control
	// internal codes are sequential within an org
	ok, err := lock.WithDelay(context.Background(), "control-code-"+orgID, codeLockWait, func() error {
		count, err := i.store.Count(orgID)
		if err != nil {
			logger.WithError(err).Error("error counting controls")
			return err
		}
		rec = dbmodels.Control{
			BaseOrgModel: dbmodels.BaseOrgModel{
				OrgID: orgID,
			},
			InternalCode:           controlapimodels.InternalCode(count + 1),
			OriginalCode:           data.OriginalCode,
			FrameworkCode:          strings.ToUpper(data.FrameworkCode),
			Title:                  data.Title,
			Description:            data.Description,
			Severity:               strings.ToLower(data.Severity),
			Category:               data.Category,
			ImplementationGuidance: data.ImplementationGuidance,
			ImplementationStatus:   models.ControlStatusNotImplemented,
			IsActive:               true,
		}
		id, err := i.store.Create(rec)
		if err != nil {
			logger.WithError(err).Error("error creating control")
			return errors.Wrap(err, "error creating control")
		}
		rec.ID = id
		return nil
	})
	if err != nil {
		return controlapimodels.ControlView{}, err
	}
	if !ok {
		return controlapimodels.ControlView{}, models.NewConflict("Control creation is busy, retry later")
	}
	id := rec.ID
	logger.
		WithField("control_id", id).
		WithField("internal_code", rec.InternalCode).
		Info("control created")
	i.record(orgID, userID, id, "create", map[string]any{"internal_code": rec.InternalCode})
	return controlapimodels.ControlConvert(rec), nil
}

func (i impl) Get(orgID, id string) (controlapimodels.ControlView, error) {
	rec, err := i.GetRec(orgID, id)
	if err != nil {
		return controlapimodels.ControlView{}, err
	}
	if rec == nil || !rec.IsActive {
		return controlapimodels.ControlView{}, models.NewNotFound("Control not found")
	}
	return controlapimodels.ControlConvert(*rec), nil
}

func (i impl) List(orgID string, filter controlapimodels.ControlFilter) ([]controlapimodels.ControlView, error) {
	list, err := i.store.List(orgID, filter)
	if err != nil {
		return nil, err
	}
	result := make([]controlapimodels.ControlView, 0, len(list))
	for _, rec := range list {
		result = append(result, controlapimodels.ControlConvert(rec))
	}
	return result, nil
}

// Delete soft delete, the record stays for history
func (i impl) Delete(orgID, userID, id string) error {
	rec, err := i.GetRec(orgID, id)
	if err != nil {
		return err
	}
	if rec == nil || !rec.IsActive {
		return models.NewNotFound("Control not found")
	}
	err = i.store.Update(orgID, id, map[string]interface{}{"is_active": false})
	if err != nil {
		return errors.Wrap(err, "error deleting control")
	}
	log.
		WithField("org_id", orgID).
		WithField("control_id", id).
		Info("control deactivated")
	i.record(orgID, userID, id, "delete", nil)
	return nil
}

func (i impl) GetRec(orgID, id string) (*dbmodels.Control, error) {
	rec, err := i.store.GetByID(orgID, id)
	if err != nil {
		log.
			WithField("org_id", orgID).
			WithField("control_id", id).
			WithError(err).
			Error("error getting control")
		return nil, err
	}
	return rec, nil
}

func (i impl) ApplyStatus(orgID, id string, status models.ControlStatus) error {
	if !status.IsValid() {
		return models.NewInvalidArgument("invalid control status")
	}
	updMap := map[string]interface{}{
		"implementation_status": status,
		"status_updated_at":     time.Now().UTC(),
	}
	err := i.store.Update(orgID, id, updMap)
	if err != nil {
		return errors.Wrap(err, "error updating control status")
	}
	log.
		WithField("org_id", orgID).
		WithField("control_id", id).
		WithField("status", status).
		Info("control status updated")
	i.record(orgID, models.SystemUser, id, "status_update", map[string]any{"implementation_status": status})
	return nil
}

func (i impl) AddMapping(orgID, userID, controlID string, data controlapimodels.MappingData) (controlapimodels.MappingView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID).
		WithField("control_id", controlID)
	if err := data.Validate(); err != nil {
		return controlapimodels.MappingView{}, models.NewInvalidArgument(err.Error())
	}
	if data.TargetControlID == controlID {
		return controlapimodels.MappingView{}, models.NewInvalidArgument("control can't be mapped to itself")
	}
	for _, id := range []string{controlID, data.TargetControlID} {
		rec, err := i.GetRec(orgID, id)
		if err != nil {
			return controlapimodels.MappingView{}, err
		}
		if rec == nil || !rec.IsActive {
			return controlapimodels.MappingView{}, models.NewNotFound("Control not found")
		}
	}
	var view controlapimodels.MappingView
	// one mapping per pair of controls
	ok, err := lock.WithDelay(context.Background(), "control-mapping-"+orgID, codeLockWait, func() error {
		existing, err := i.mappings.GetByPair(orgID, controlID, data.TargetControlID)
		if err != nil {
			logger.WithError(err).Error("error getting control mapping")
			return err
		}
		if existing != nil {
			return models.NewConflict("Controls are already mapped")
		}
		id, err := i.mappings.Create(dbmodels.ControlMapping{
			BaseOrgModel: dbmodels.BaseOrgModel{
				OrgID: orgID,
			},
			SourceControlID: controlID,
			TargetControlID: data.TargetControlID,
			MappingType:     strings.ToLower(data.MappingType),
			ConfidenceScore: data.ConfidenceScore,
		})
		if err != nil {
			logger.WithError(err).Error("error creating control mapping")
			return errors.Wrap(err, "error creating control mapping")
		}
		rec, err := i.mappings.GetByID(orgID, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return errors.New("created mapping not found")
		}
		view = controlapimodels.MappingConvert(*rec)
		return nil
	})
	if err != nil {
		return controlapimodels.MappingView{}, err
	}
	if !ok {
		return controlapimodels.MappingView{}, models.NewConflict("Control mapping is busy, retry later")
	}
	logger.
		WithField("mapping_id", view.ID).
		WithField("target_control_id", data.TargetControlID).
		Info("control mapping created")
	i.record(orgID, userID, controlID, "map", map[string]any{"mapping_id": view.ID, "target_control_id": data.TargetControlID, "mapping_type": view.MappingType})
	return view, nil
}

func (i impl) ListMappings(orgID, controlID string) ([]controlapimodels.MappingView, error) {
	if _, err := i.Get(orgID, controlID); err != nil {
		return nil, err
	}
	list, err := i.mappings.ListByControl(orgID, controlID)
	if err != nil {
		return nil, err
	}
	result := make([]controlapimodels.MappingView, 0, len(list))
	for _, rec := range list {
		result = append(result, controlapimodels.MappingConvert(rec))
	}
	return result, nil
}

func (i impl) DeleteMapping(orgID, userID, controlID, mappingID string) error {
	rec, err := i.mappings.GetByID(orgID, mappingID)
	if err != nil {
		return err
	}
	if rec == nil || (rec.SourceControlID != controlID && rec.TargetControlID != controlID) {
		return models.NewNotFound("Control mapping not found")
	}
	err = i.mappings.Delete(orgID, mappingID)
	if err != nil {
		return errors.Wrap(err, "error deleting control mapping")
	}
	log.
		WithField("org_id", orgID).
		WithField("control_id", controlID).
		WithField("mapping_id", mappingID).
		Info("control mapping deleted")
	i.record(orgID, userID, controlID, "unmap", map[string]any{"mapping_id": mappingID})
	return nil
}

func (i impl) record(orgID, userID, controlID, action string, meta map[string]any) {
	if i.auditor == nil {
		return
	}
	event := dbmodels.AuditEvent{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		EventType:    models.AuditControlUpdate,
		ResourceType: models.AuditResourceControl,
		ResourceID:   controlID,
		Action:       action,
		UserID:       userID,
		Timestamp:    time.Now().UTC(),
		Metadata:     meta,
	}
	if err := i.auditor.Record(event); err != nil {
		log.WithField("control_id", controlID).WithError(err).Error("error recording audit event")
	}
}
