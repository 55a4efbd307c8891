package dbmodels

import (
	"grc-backend/models"
	"time"
)

type EvidenceFile struct {
	BaseOrgModel
	ControlID        string                `gorm:"type:varchar(36);index"`
	FileName         string                `gorm:"type:varchar(255)"`
	FilePath         string                `gorm:"type:varchar(500)"` // object key in S3
	FileHash         string                `gorm:"type:varchar(64)"`  // sha256
	FileType         string                `gorm:"type:varchar(100)"`
	FileSize         int64
	Source           models.EvidenceSource `gorm:"type:varchar(20)"`
	UploadedBy       *string               `gorm:"type:varchar(36)"`
	UploadedDate     time.Time
	CompliancePeriod string `gorm:"type:varchar(50)"`
	Notes            string `gorm:"type:text"`
}
