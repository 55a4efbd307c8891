package approvalworkflow

import (
	"fmt"
	"grc-backend/config"
	"grc-backend/db"
	approvalrequest "grc-backend/lib/approval-request"
	approvalrequeststore "grc-backend/lib/approval-request/store"
	workflowstepstore "grc-backend/lib/approval-request/workflow-step-store"
	audithandler "grc-backend/lib/audit"
	controlhandler "grc-backend/lib/control"
	notificationhandler "grc-backend/lib/notification"
	initchecker "grc-backend/lib/utils/init-checker"
	"grc-backend/models"
	approvalapimodels "grc-backend/models/api/approval"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Create(actor approvalapimodels.Actor, data approvalapimodels.StatusChangeData) (approvalapimodels.ApprovalRequestView, error)
	GetByID(orgID, id string) (approvalapimodels.ApprovalRequestView, error)
	List(orgID string, status models.ApprovalStatus) ([]approvalapimodels.ApprovalRequestView, error)
	Approve(actor approvalapimodels.Actor, id string, data approvalapimodels.ApproveData) (approvalapimodels.DecisionResult, error)
	Reject(actor approvalapimodels.Actor, id string, data approvalapimodels.RejectData) (approvalapimodels.DecisionResult, error)
	History(orgID, id string) ([]approvalapimodels.WorkflowStepView, error)
	GetWithHistory(orgID, id string) (*dbmodels.ApprovalRequest, []dbmodels.WorkflowStep, error)
	ApproverRole(level int) models.UserRole
}

// ControlProvider owns control records
type ControlProvider interface {
	GetRec(orgID, id string) (*dbmodels.Control, error)
	ApplyStatus(orgID, id string, status models.ControlStatus) error
}

type AuditRecorder interface {
	Record(event dbmodels.AuditEvent) error
}

type Notifier interface {
	NotifyRole(orgID string, role models.UserRole, code models.NotificationCode, msg string) error
	NotifyUser(orgID, userID string, code models.NotificationCode, msg string) error
}

type Policy struct {
	DefaultMaxLevels int
	LevelRoles       []models.UserRole
	StrictLevelRoles bool
}

var Instance Provider

func NewHandler() {
	initchecker.CheckInit("approvalworkflow",
		"controlhandler", controlhandler.Instance,
		"audithandler", audithandler.Instance,
		"notificationhandler", notificationhandler.Instance,
	)
	Instance = NewInstance(
		approvalrequeststore.NewInstance(db.DB),
		workflowstepstore.NewInstance(db.DB),
		approvalrequest.NewTxRunner(db.DB),
		controlhandler.Instance,
		audithandler.Instance,
		notificationhandler.Instance,
		PolicyFromConfig(),
	)
}

func PolicyFromConfig() Policy {
	policy := Policy{
		DefaultMaxLevels: config.Conf.Approval.DefaultMaxLevels,
	}
	if config.Conf.Approval.StrictLevelRoles != nil {
		policy.StrictLevelRoles = *config.Conf.Approval.StrictLevelRoles
	}
	for _, role := range config.Conf.Approval.LevelRoles {
		policy.LevelRoles = append(policy.LevelRoles, models.UserRole(role))
	}
	return policy
}

func NewInstance(store approvalrequeststore.Provider, stepStore workflowstepstore.Provider, tx approvalrequest.TxRunner,
	controls ControlProvider, auditor AuditRecorder, notifier Notifier, policy Policy) Provider {
	if policy.DefaultMaxLevels < 1 {
		policy.DefaultMaxLevels = 1
	}
	return impl{
		store:     store,
		stepStore: stepStore,
		tx:        tx,
		controls:  controls,
		auditor:   auditor,
		notifier:  notifier,
		policy:    policy,
		now:       time.Now,
	}
}

type impl struct {
	store     approvalrequeststore.Provider
	stepStore workflowstepstore.Provider
	tx        approvalrequest.TxRunner
	controls  ControlProvider
	auditor   AuditRecorder
	notifier  Notifier
	policy    Policy
	now       func() time.Time
}

func (i impl) GetLogger(orgID, requestID string) *log.Entry {
	logger := log.
		WithField("org_id", orgID).
		WithField("approval_request_id", requestID)
	return logger
}

func (i impl) Create(actor approvalapimodels.Actor, data approvalapimodels.StatusChangeData) (approvalapimodels.ApprovalRequestView, error) {
	logger := log.
		WithField("org_id", actor.OrgID).
		WithField("control_id", data.ControlID).
		WithField("user_id", actor.UserID)
	if err := data.Validate(); err != nil {
		return approvalapimodels.ApprovalRequestView{}, models.NewInvalidArgument(err.Error())
	}
	control, err := i.controls.GetRec(actor.OrgID, data.ControlID)
	if err != nil {
		return approvalapimodels.ApprovalRequestView{}, err
	}
	if control == nil || !control.IsActive {
		return approvalapimodels.ApprovalRequestView{}, models.NewNotFound("Control not found")
	}
	maxLevels := data.MaxLevels
	if maxLevels == 0 {
		maxLevels = i.policy.DefaultMaxLevels
	}
	rec := dbmodels.ApprovalRequest{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: actor.OrgID,
		},
		ControlID:      data.ControlID,
		ProposedStatus: data.ProposedStatus,
		CurrentLevel:   1,
		MaxLevels:      maxLevels,
		RequestedBy:    actor.UserID,
		RequestedDate:  i.now().UTC(),
		DueDate:        data.DueDate,
		Status:         models.ApprovalStatusPending,
	}
	var id string
	// the control row lock serializes creates for one control
	err = i.tx.InTx(func(requests approvalrequeststore.Provider, _ workflowstepstore.Provider) error {
		found, err := requests.LockControl(actor.OrgID, data.ControlID)
		if err != nil {
			return errors.Wrap(err, "error locking control")
		}
		if !found {
			return models.NewNotFound("Control not found")
		}
		pending, err := requests.GetPendingByControl(actor.OrgID, data.ControlID)
		if err != nil {
			return errors.Wrap(err, "error checking pending approval requests")
		}
		if pending != nil {
			return models.NewConflict(fmt.Sprintf("Control already has a pending approval request %v", pending.ID))
		}
		id, err = requests.Create(rec)
		if err != nil {
			return errors.Wrap(err, "error creating approval request")
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrConflict) {
			logger.WithError(err).Error("error creating approval request")
		}
		return approvalapimodels.ApprovalRequestView{}, err
	}
	rec.ID = id
	rec.Control = control
	logger.
		WithField("approval_request_id", id).
		Info("approval request created")

	i.record(rec, actor, models.AuditApprovalRequested, "request", map[string]any{
		"proposed_status": rec.ProposedStatus,
		"max_levels":      rec.MaxLevels,
	})
	i.notifyLevel(rec, 1)
	return approvalapimodels.ApprovalRequestConvert(rec), nil
}

func (i impl) GetByID(orgID, id string) (approvalapimodels.ApprovalRequestView, error) {
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return approvalapimodels.ApprovalRequestView{}, err
	}
	return approvalapimodels.ApprovalRequestConvert(*rec), nil
}

func (i impl) List(orgID string, status models.ApprovalStatus) ([]approvalapimodels.ApprovalRequestView, error) {
	if !status.IsValid() {
		status = ""
	}
	list, err := i.store.List(orgID, status)
	if err != nil {
		log.WithField("org_id", orgID).WithError(err).Error("error listing approval requests")
		return nil, err
	}
	result := make([]approvalapimodels.ApprovalRequestView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.ApprovalRequestConvert(rec))
	}
	return result, nil
}

func (i impl) Approve(actor approvalapimodels.Actor, id string, data approvalapimodels.ApproveData) (approvalapimodels.DecisionResult, error) {
	return i.submit(actor, id, approvalapimodels.Decision{
		Decision:      models.DecisionApproved,
		Comments:      data.Comments,
		ExpectedLevel: data.Level,
	})
}

func (i impl) Reject(actor approvalapimodels.Actor, id string, data approvalapimodels.RejectData) (approvalapimodels.DecisionResult, error) {
	return i.submit(actor, id, approvalapimodels.Decision{
		Decision:      models.DecisionRejected,
		Comments:      data.Comments,
		ExpectedLevel: data.Level,
	})
}

func (i impl) submit(actor approvalapimodels.Actor, id string, decision approvalapimodels.Decision) (approvalapimodels.DecisionResult, error) {
	logger := i.GetLogger(actor.OrgID, id).
		WithField("user_id", actor.UserID).
		WithField("decision", decision.Decision)
	switch decision.Decision {
	case models.DecisionApproved:
	case models.DecisionRejected:
		if strings.TrimSpace(decision.Comments) == "" {
			return approvalapimodels.DecisionResult{}, models.NewInvalidArgument("Rejection comments are required")
		}
	default:
		return approvalapimodels.DecisionResult{}, models.NewInvalidArgument(fmt.Sprintf("unknown decision: %v", decision.Decision))
	}

	rec, err := i.getRec(actor.OrgID, id)
	if err != nil {
		return approvalapimodels.DecisionResult{}, err
	}
	if rec.Status != models.ApprovalStatusPending {
		return approvalapimodels.DecisionResult{}, models.NewConflict("Request already processed")
	}
	if decision.ExpectedLevel != nil && *decision.ExpectedLevel != rec.CurrentLevel {
		return approvalapimodels.DecisionResult{}, models.NewConflict(fmt.Sprintf("Request is at level %v, not %v", rec.CurrentLevel, *decision.ExpectedLevel))
	}
	if err = i.checkLevelRole(logger, actor, rec.CurrentLevel); err != nil {
		return approvalapimodels.DecisionResult{}, err
	}

	now := i.now().UTC()
	step := dbmodels.WorkflowStep{
		ApprovalRequestID: rec.ID,
		Level:             rec.CurrentLevel,
		ApproverRole:      actor.Role,
		ApproverUserID:    actor.UserID,
		Decision:          decision.Decision,
		DecisionDate:      now,
		Comments:          decision.Comments,
	}
	updMap, result := nextState(*rec, actor.UserID, decision, now)

	err = i.tx.InTx(func(requests approvalrequeststore.Provider, steps workflowstepstore.Provider) error {
		if _, err := steps.Create(step); err != nil {
			return errors.Wrap(err, "error saving workflow step")
		}
		ok, err := requests.Transition(actor.OrgID, rec.ID, rec.CurrentLevel, updMap)
		if err != nil {
			return errors.Wrap(err, "error updating approval request")
		}
		if !ok {
			return models.NewConflict("Request already processed")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			logger.Warn("concurrent decision lost the race")
		} else {
			logger.WithError(err).Error("error committing decision")
		}
		return approvalapimodels.DecisionResult{}, err
	}
	logger.
		WithField("level", result.LevelDecided).
		WithField("status", result.Status).
		Info("decision committed")

	i.afterDecision(*rec, actor, decision, result)
	return result, nil
}

func (i impl) History(orgID, id string) ([]approvalapimodels.WorkflowStepView, error) {
	_, list, err := i.GetWithHistory(orgID, id)
	if err != nil {
		return nil, err
	}
	result := make([]approvalapimodels.WorkflowStepView, 0, len(list))
	for _, rec := range list {
		result = append(result, approvalapimodels.WorkflowStepConvert(rec))
	}
	return result, nil
}

func (i impl) GetWithHistory(orgID, id string) (*dbmodels.ApprovalRequest, []dbmodels.WorkflowStep, error) {
	rec, err := i.getRec(orgID, id)
	if err != nil {
		return nil, nil, err
	}
	list, err := i.stepStore.List(rec.ID)
	if err != nil {
		i.GetLogger(orgID, id).WithError(err).Error("error getting workflow history")
		return nil, nil, err
	}
	return rec, list, nil
}

// ApproverRole role expected to decide at level, the last configured role covers deeper levels
func (i impl) ApproverRole(level int) models.UserRole {
	if len(i.policy.LevelRoles) == 0 || level < 1 {
		return ""
	}
	if level > len(i.policy.LevelRoles) {
		return i.policy.LevelRoles[len(i.policy.LevelRoles)-1]
	}
	return i.policy.LevelRoles[level-1]
}

func (i impl) checkLevelRole(logger *log.Entry, actor approvalapimodels.Actor, level int) error {
	expected := i.ApproverRole(level)
	if expected == "" || actor.Role == expected || actor.Role.IsAdmin() {
		return nil
	}
	if i.policy.StrictLevelRoles {
		return models.NewForbidden(fmt.Sprintf("Level %v must be decided by %v", level, expected.ToHuman()))
	}
	logger.
		WithField("expected_role", expected).
		WithField("actual_role", actor.Role).
		Warn("decision taken by a role other than the level approver")
	return nil
}

func (i impl) getRec(orgID, id string) (*dbmodels.ApprovalRequest, error) {
	rec, err := i.store.GetByID(orgID, id)
	if err != nil {
		i.GetLogger(orgID, id).WithError(err).Error("error getting approval request")
		return nil, err
	}
	if rec == nil {
		return nil, models.NewNotFound("Approval request not found")
	}
	return rec, nil
}

// afterDecision runs the side effects of a committed decision. Failures are logged only.
func (i impl) afterDecision(rec dbmodels.ApprovalRequest, actor approvalapimodels.Actor, decision approvalapimodels.Decision, result approvalapimodels.DecisionResult) {
	logger := i.GetLogger(rec.OrgID, rec.ID)
	meta := map[string]any{
		"control_id":      rec.ControlID,
		"proposed_status": rec.ProposedStatus,
		"level":           result.LevelDecided,
		"max_levels":      rec.MaxLevels,
		"comments":        decision.Comments,
	}
	switch result.Status {
	case models.ApprovalStatusApproved:
		if err := i.controls.ApplyStatus(rec.OrgID, rec.ControlID, rec.ProposedStatus); err != nil {
			logger.WithError(err).Error("error applying approved status to control")
		}
		i.record(rec, actor, models.AuditApprovalDecision, "approve", meta)
	case models.ApprovalStatusRejected:
		i.record(rec, actor, models.AuditApprovalDecision, "reject", meta)
		msg := fmt.Sprintf("Your approval request %v for control %v was rejected at level %v: %v",
			rec.ID, controlLabel(rec), result.LevelDecided, decision.Comments)
		if err := i.notifier.NotifyUser(rec.OrgID, rec.RequestedBy, models.NotifyApprovalRejected, msg); err != nil {
			logger.WithError(err).Error("error notifying requester about rejection")
		}
	case models.ApprovalStatusPending:
		rec.CurrentLevel = result.CurrentLevel
		i.notifyLevel(rec, result.CurrentLevel)
	}
}

func (i impl) notifyLevel(rec dbmodels.ApprovalRequest, level int) {
	role := i.ApproverRole(level)
	if role == "" {
		return
	}
	msg := fmt.Sprintf("Approval request %v for control %v awaits your decision at level %v of %v",
		rec.ID, controlLabel(rec), level, rec.MaxLevels)
	if err := i.notifier.NotifyRole(rec.OrgID, role, models.NotifyApprovalPending, msg); err != nil {
		i.GetLogger(rec.OrgID, rec.ID).WithError(err).Error("error notifying level approver")
	}
}

func (i impl) record(rec dbmodels.ApprovalRequest, actor approvalapimodels.Actor, eventType models.AuditEventType, action string, meta map[string]any) {
	event := dbmodels.AuditEvent{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: rec.OrgID,
		},
		EventType:    eventType,
		ResourceType: models.AuditResourceApproval,
		ResourceID:   rec.ID,
		Action:       action,
		UserID:       actor.UserID,
		Timestamp:    i.now().UTC(),
		Metadata:     meta,
	}
	if err := i.auditor.Record(event); err != nil {
		i.GetLogger(rec.OrgID, rec.ID).WithError(err).Error("error recording audit event")
	}
}

func controlLabel(rec dbmodels.ApprovalRequest) string {
	if rec.Control != nil && rec.Control.InternalCode != "" {
		return rec.Control.InternalCode
	}
	return rec.ControlID
}
