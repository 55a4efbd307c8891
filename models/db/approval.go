package dbmodels

import (
	"grc-backend/models"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovalRequest struct {
	BaseOrgModel
	ControlID      string               `gorm:"type:varchar(36);index"`
	Control        *Control             `gorm:"foreignKey:ControlID"`
	ProposedStatus models.ControlStatus `gorm:"type:varchar(50)"`
	CurrentLevel   int                  `gorm:"default:1"`
	MaxLevels      int                  `gorm:"default:2"`
	RequestedBy    string               `gorm:"type:varchar(36)"`
	RequestedDate  time.Time            `gorm:"index"`
	DueDate        *time.Time
	Status         models.ApprovalStatus `gorm:"type:varchar(20);index"`
	ResolvedBy     *string               `gorm:"type:varchar(36)"`
	ResolvedAt     *time.Time
	Comments       string         `gorm:"type:text"`
	WorkflowSteps  []WorkflowStep `gorm:"foreignKey:ApprovalRequestID;constraint:OnDelete:CASCADE"`
}

func (ApprovalRequest) TableName() string {
	return "approval_queue"
}

// WorkflowStep is one decision taken on a request. Rows are insert-only.
type WorkflowStep struct {
	ID                string          `gorm:"primaryKey;type:varchar(36)"`
	ApprovalRequestID string          `gorm:"type:varchar(36);index"`
	Level             int             `gorm:"index"`
	ApproverRole      models.UserRole `gorm:"type:varchar(100)"`
	ApproverUserID    string          `gorm:"type:varchar(36)"`
	Decision          models.Decision `gorm:"type:varchar(20)"`
	DecisionDate      time.Time
	Comments          string `gorm:"type:text"`
	CreatedAt         time.Time
}

func (WorkflowStep) TableName() string {
	return "approval_workflow_steps"
}

func (s *WorkflowStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
