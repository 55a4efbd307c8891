package approvalapimodels

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const MaxLevelsLimit = 10

type StatusChangeData struct {
	ControlID      string               `json:"control_id"`
	ProposedStatus models.ControlStatus `json:"proposed_status"` // implemented/partial/not-implemented
	MaxLevels      int                  `json:"max_levels"`      // 0 - default from config
	DueDate        *time.Time           `json:"due_date"`
}

func (v StatusChangeData) Validate() error {
	if v.ControlID == "" {
		return errors.New("control_id is required")
	}
	if !v.ProposedStatus.IsValid() {
		return errors.Errorf("invalid proposed_status: %v", v.ProposedStatus)
	}
	if v.MaxLevels < 0 || v.MaxLevels > MaxLevelsLimit {
		return errors.Errorf("max_levels must be 0 (default) or 1-%v", MaxLevelsLimit)
	}
	return nil
}

type ApproveData struct {
	Comments string `json:"comments"`
	Level    *int   `json:"level"` // optional, the level the caller is deciding on
}

type RejectData struct {
	Comments string `json:"comments"`
	Level    *int   `json:"level"`
}

func (v RejectData) Validate() error {
	if strings.TrimSpace(v.Comments) == "" {
		return errors.New("Rejection comments are required")
	}
	return nil
}

// Decision is what the engine receives from the boundary
type Decision struct {
	Decision      models.Decision
	Comments      string
	ExpectedLevel *int
}

// Actor identity of the caller, trusted as given
type Actor struct {
	UserID string
	Role   models.UserRole
	OrgID  string
}

type DecisionResult struct {
	RequestID    string                `json:"request_id"`
	Status       models.ApprovalStatus `json:"status"`
	CurrentLevel int                   `json:"current_level"`
	MaxLevels    int                   `json:"max_levels"`
	LevelDecided int                   `json:"level_decided"`
	Message      string                `json:"message"`
	Comments     string                `json:"comments,omitempty"`
}

type ApprovalRequestView struct {
	ID             string                `json:"request_id"`
	OrgID          string                `json:"org_id"`
	ControlID      string                `json:"control_id"`
	ControlCode    string                `json:"control_code,omitempty"`
	ControlTitle   string                `json:"control_title,omitempty"`
	ProposedStatus models.ControlStatus  `json:"proposed_status"`
	CurrentLevel   int                   `json:"current_level"`
	MaxLevels      int                   `json:"max_levels"`
	RequestedBy    string                `json:"requested_by"`
	RequestedDate  time.Time             `json:"requested_date"`
	DueDate        *time.Time            `json:"due_date"`
	Status         models.ApprovalStatus `json:"status"`
	ResolvedBy     *string               `json:"resolved_by"`
	ResolvedAt     *time.Time            `json:"resolved_at"`
	Comments       string                `json:"comments"`
}

func ApprovalRequestConvert(rec dbmodels.ApprovalRequest) ApprovalRequestView {
	view := ApprovalRequestView{
		ID:             rec.ID,
		OrgID:          rec.OrgID,
		ControlID:      rec.ControlID,
		ProposedStatus: rec.ProposedStatus,
		CurrentLevel:   rec.CurrentLevel,
		MaxLevels:      rec.MaxLevels,
		RequestedBy:    rec.RequestedBy,
		RequestedDate:  rec.RequestedDate,
		DueDate:        rec.DueDate,
		Status:         rec.Status,
		ResolvedBy:     rec.ResolvedBy,
		ResolvedAt:     rec.ResolvedAt,
		Comments:       rec.Comments,
	}
	if rec.Control != nil {
		view.ControlCode = rec.Control.InternalCode
		view.ControlTitle = rec.Control.Title
	}
	return view
}

type WorkflowStepView struct {
	ID             string          `json:"workflow_step_id"`
	RequestID      string          `json:"request_id"`
	Level          int             `json:"level"`
	ApproverRole   models.UserRole `json:"approver_role"`
	ApproverUserID string          `json:"approver_user_id"`
	Decision       models.Decision `json:"decision"`
	DecisionDate   time.Time       `json:"decision_date"`
	Comments       string          `json:"comments"`
}

func WorkflowStepConvert(rec dbmodels.WorkflowStep) WorkflowStepView {
	return WorkflowStepView{
		ID:             rec.ID,
		RequestID:      rec.ApprovalRequestID,
		Level:          rec.Level,
		ApproverRole:   rec.ApproverRole,
		ApproverUserID: rec.ApproverUserID,
		Decision:       rec.Decision,
		DecisionDate:   rec.DecisionDate,
		Comments:       rec.Comments,
	}
}

// ParseStatusFilter unknown values fall through to an unfiltered list
func ParseStatusFilter(value string) models.ApprovalStatus {
	status := models.ApprovalStatus(value)
	if status.IsValid() {
		return status
	}
	return ""
}
