package dbmodels

import (
	"grc-backend/models"
	"time"
)

type Control struct {
	BaseOrgModel
	InternalCode           string               `gorm:"type:varchar(50);index"` // BR-001, unique within org
	OriginalCode           string               `gorm:"type:varchar(100);index"`      // CIS 1.1
	FrameworkCode          string               `gorm:"type:varchar(50);index"`
	Title                  string               `gorm:"type:varchar(500)"`
	Description            string               `gorm:"type:text"`
	Severity               string               `gorm:"type:varchar(20)"`
	Category               string               `gorm:"type:varchar(200)"`
	ImplementationGuidance string               `gorm:"type:text"`
	ImplementationStatus   models.ControlStatus `gorm:"type:varchar(50)"`
	StatusUpdatedAt        *time.Time
	IsActive               bool `gorm:"default:true"`
}

// ControlMapping links equivalent or related controls, usually from different frameworks
type ControlMapping struct {
	BaseOrgModel
	SourceControlID string   `gorm:"type:varchar(36);uniqueIndex:idx_control_mapping"`
	SourceControl   *Control `gorm:"foreignKey:SourceControlID"`
	TargetControlID string   `gorm:"type:varchar(36);uniqueIndex:idx_control_mapping;index"`
	TargetControl   *Control `gorm:"foreignKey:TargetControlID"`
	MappingType     string   `gorm:"type:varchar(50)"` // equivalent, related, parent, child
	ConfidenceScore *float64
}
