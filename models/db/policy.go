package dbmodels

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Policy struct {
	BaseOrgModel
	Name              string `gorm:"type:varchar(255)"`
	Version           string `gorm:"type:varchar(50)"`
	PolicyType        string `gorm:"type:varchar(100)"` // security, privacy, operational
	Document          string `gorm:"type:text"`
	Owner             string `gorm:"type:varchar(255)"`
	ReviewCycleMonths int    `gorm:"default:12"`
	NextReviewDate    *time.Time
	IsActive          bool                `gorm:"default:true"`
	ControlLinks      []PolicyControlLink `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
}

type PolicyControlLink struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)"`
	OrgID     string   `gorm:"type:varchar(36);index"`
	PolicyID  string   `gorm:"type:varchar(36);uniqueIndex:idx_policy_control"`
	ControlID string   `gorm:"type:varchar(36);uniqueIndex:idx_policy_control;index"`
	Control   *Control `gorm:"foreignKey:ControlID"`
	CreatedAt time.Time
}

func (l *PolicyControlLink) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
