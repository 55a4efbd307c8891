package policyhandler

import (
	"grc-backend/db"
	audithandler "grc-backend/lib/audit"
	controlhandler "grc-backend/lib/control"
	controllinkstore "grc-backend/lib/policy/control-link-store"
	policystore "grc-backend/lib/policy/store"
	initchecker "grc-backend/lib/utils/init-checker"
	"grc-backend/models"
	controlapimodels "grc-backend/models/api/control"
	policyapimodels "grc-backend/models/api/policy"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(orgID, userID string, data policyapimodels.PolicyData) (policyapimodels.PolicyView, error)
	Get(orgID, id string) (policyapimodels.PolicyView, error)
	List(orgID string, filter policyapimodels.PolicyFilter) ([]policyapimodels.PolicyView, error)
	Update(orgID, userID, id string, data policyapimodels.PolicyUpdate) (policyapimodels.PolicyView, error)
	Delete(orgID, userID, id string) error
	Link(orgID, userID string, data policyapimodels.LinkData) (policyapimodels.LinkView, error)
	Unlink(orgID, userID, policyID, controlID string) error
	Controls(orgID, policyID string) ([]controlapimodels.ControlView, error)
}

type ControlReader interface {
	GetRec(orgID, id string) (*dbmodels.Control, error)
}

type AuditRecorder interface {
	Record(event dbmodels.AuditEvent) error
}

var Instance Provider

func NewHandler() {
	initchecker.CheckInit("policyhandler",
		"controlhandler", controlhandler.Instance,
	)
	Instance = NewInstance(
		policystore.NewInstance(db.DB),
		controllinkstore.NewInstance(db.DB),
		controlhandler.Instance,
		audithandler.Instance,
	)
}

func NewInstance(store policystore.Provider, links controllinkstore.Provider, controls ControlReader, auditor AuditRecorder) Provider {
	return impl{
		store:    store,
		links:    links,
		controls: controls,
		auditor:  auditor,
	}
}

type impl struct {
	store    policystore.Provider
	links    controllinkstore.Provider
	controls ControlReader
	auditor  AuditRecorder
}

func (i impl) Create(orgID, userID string, data policyapimodels.PolicyData) (policyapimodels.PolicyView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID)
	if err := data.Validate(); err != nil {
		return policyapimodels.PolicyView{}, models.NewInvalidArgument(err.Error())
	}
	cycle := data.ReviewCycleMonths
	if cycle == 0 {
		cycle = policyapimodels.DefaultReviewCycleMonths
	}
	nextReview := data.NextReviewDate
	if nextReview == nil {
		date := time.Now().UTC().AddDate(0, cycle, 0)
		nextReview = &date
	}
	rec := dbmodels.Policy{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		Name:              strings.TrimSpace(data.Name),
		Version:           data.Version,
		PolicyType:        strings.ToLower(data.PolicyType),
		Document:          data.Document,
		Owner:             data.Owner,
		ReviewCycleMonths: cycle,
		NextReviewDate:    nextReview,
		IsActive:          true,
	}
	id, err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("error creating policy")
		return policyapimodels.PolicyView{}, errors.Wrap(err, "error creating policy")
	}
	rec.ID = id
	logger.
		WithField("policy_id", id).
		Info("policy created")
	i.record(orgID, userID, id, "create", map[string]any{"name": rec.Name})
	return policyapimodels.PolicyConvert(rec, policyapimodels.LinkSummary{}), nil
}

func (i impl) Get(orgID, id string) (policyapimodels.PolicyView, error) {
	rec, err := i.getActive(orgID, id)
	if err != nil {
		return policyapimodels.PolicyView{}, err
	}
	return i.view(orgID, *rec)
}

func (i impl) view(orgID string, rec dbmodels.Policy) (policyapimodels.PolicyView, error) {
	summaries, err := i.links.Summaries(orgID, []string{rec.ID})
	if err != nil {
		return policyapimodels.PolicyView{}, errors.Wrap(err, "error getting policy controls")
	}
	return policyapimodels.PolicyConvert(rec, summaries[rec.ID]), nil
}

func (i impl) List(orgID string, filter policyapimodels.PolicyFilter) ([]policyapimodels.PolicyView, error) {
	list, err := i.store.List(orgID, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(list))
	for _, rec := range list {
		ids = append(ids, rec.ID)
	}
	summaries, err := i.links.Summaries(orgID, ids)
	if err != nil {
		return nil, errors.Wrap(err, "error getting policy controls")
	}
	result := make([]policyapimodels.PolicyView, 0, len(list))
	for _, rec := range list {
		result = append(result, policyapimodels.PolicyConvert(rec, summaries[rec.ID]))
	}
	return result, nil
}

// Update inactive policies can be updated too, is_active=true restores them
func (i impl) Update(orgID, userID, id string, data policyapimodels.PolicyUpdate) (policyapimodels.PolicyView, error) {
	if err := data.Validate(); err != nil {
		return policyapimodels.PolicyView{}, models.NewInvalidArgument(err.Error())
	}
	updMap := data.UpdMap()
	if len(updMap) == 0 {
		return policyapimodels.PolicyView{}, models.NewInvalidArgument("nothing to update")
	}
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return policyapimodels.PolicyView{}, err
	}
	if rec == nil {
		return policyapimodels.PolicyView{}, models.NewNotFound("Policy not found")
	}
	err = i.store.Update(orgID, id, updMap)
	if err != nil {
		return policyapimodels.PolicyView{}, errors.Wrap(err, "error updating policy")
	}
	log.
		WithField("org_id", orgID).
		WithField("policy_id", id).
		Info("policy updated")
	i.record(orgID, userID, id, "update", updMap)
	updated, err := i.getRec(orgID, id)
	if err != nil {
		return policyapimodels.PolicyView{}, err
	}
	if updated == nil {
		return policyapimodels.PolicyView{}, models.NewNotFound("Policy not found")
	}
	return i.view(orgID, *updated)
}

// Delete soft delete, control links stay for history
func (i impl) Delete(orgID, userID, id string) error {
	if _, err := i.getActive(orgID, id); err != nil {
		return err
	}
	err := i.store.Update(orgID, id, map[string]interface{}{"is_active": false})
	if err != nil {
		return errors.Wrap(err, "error deleting policy")
	}
	log.
		WithField("org_id", orgID).
		WithField("policy_id", id).
		Info("policy deactivated")
	i.record(orgID, userID, id, "delete", nil)
	return nil
}

func (i impl) Link(orgID, userID string, data policyapimodels.LinkData) (policyapimodels.LinkView, error) {
	logger := log.
		WithField("org_id", orgID).
		WithField("user_id", userID).
		WithField("policy_id", data.PolicyID).
		WithField("control_id", data.ControlID)
	if err := data.Validate(); err != nil {
		return policyapimodels.LinkView{}, models.NewInvalidArgument(err.Error())
	}
	if _, err := i.getActive(orgID, data.PolicyID); err != nil {
		return policyapimodels.LinkView{}, err
	}
	control, err := i.controls.GetRec(orgID, data.ControlID)
	if err != nil {
		return policyapimodels.LinkView{}, err
	}
	if control == nil || !control.IsActive {
		return policyapimodels.LinkView{}, models.NewNotFound("Control not found")
	}
	existing, err := i.links.Get(orgID, data.PolicyID, data.ControlID)
	if err != nil {
		return policyapimodels.LinkView{}, errors.Wrap(err, "error getting policy link")
	}
	if existing != nil {
		return policyapimodels.LinkView{}, models.NewConflict("Control is already linked to the policy")
	}
	rec := dbmodels.PolicyControlLink{
		OrgID:     orgID,
		PolicyID:  data.PolicyID,
		ControlID: data.ControlID,
		CreatedAt: time.Now().UTC(),
	}
	id, err := i.links.Create(rec)
	if err != nil {
		// the unique index rejected a concurrent link of the same pair
		if existing, getErr := i.links.Get(orgID, data.PolicyID, data.ControlID); getErr == nil && existing != nil {
			return policyapimodels.LinkView{}, models.NewConflict("Control is already linked to the policy")
		}
		logger.WithError(err).Error("error linking control")
		return policyapimodels.LinkView{}, errors.Wrap(err, "error linking control")
	}
	rec.ID = id
	logger.Info("control linked to policy")
	i.record(orgID, userID, data.PolicyID, "link", map[string]any{"control_id": data.ControlID})
	return policyapimodels.LinkConvert(rec), nil
}

func (i impl) Unlink(orgID, userID, policyID, controlID string) error {
	deleted, err := i.links.Delete(orgID, policyID, controlID)
	if err != nil {
		return errors.Wrap(err, "error unlinking control")
	}
	if !deleted {
		return models.NewNotFound("Policy link not found")
	}
	log.
		WithField("org_id", orgID).
		WithField("policy_id", policyID).
		WithField("control_id", controlID).
		Info("control unlinked from policy")
	i.record(orgID, userID, policyID, "unlink", map[string]any{"control_id": controlID})
	return nil
}

func (i impl) Controls(orgID, policyID string) ([]controlapimodels.ControlView, error) {
	if _, err := i.getActive(orgID, policyID); err != nil {
		return nil, err
	}
	list, err := i.links.ListControls(orgID, policyID)
	if err != nil {
		return nil, errors.Wrap(err, "error getting policy controls")
	}
	result := make([]controlapimodels.ControlView, 0, len(list))
	for _, rec := range list {
		result = append(result, controlapimodels.ControlConvert(rec))
	}
	return result, nil
}

func (i impl) getActive(orgID, id string) (*dbmodels.Policy, error) {
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsActive {
		return nil, models.NewNotFound("Policy not found")
	}
	return rec, nil
}

func (i impl) getRec(orgID, id string) (*dbmodels.Policy, error) {
	rec, err := i.store.GetByID(orgID, id)
	if err != nil {
		log.
			WithField("org_id", orgID).
			WithField("policy_id", id).
			WithError(err).
			Error("error getting policy")
		return nil, err
	}
	return rec, nil
}

func (i impl) record(orgID, userID, policyID, action string, meta map[string]any) {
	if i.auditor == nil {
		return
	}
	event := dbmodels.AuditEvent{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		EventType:    models.AuditPolicyUpdate,
		ResourceType: models.AuditResourcePolicy,
		ResourceID:   policyID,
		Action:       action,
		UserID:       userID,
		Timestamp:    time.Now().UTC(),
		Metadata:     meta,
	}
	if err := i.auditor.Record(event); err != nil {
		log.WithField("policy_id", policyID).WithError(err).Error("error recording audit event")
	}
}
