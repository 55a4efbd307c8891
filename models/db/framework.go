package dbmodels

import "time"

type Framework struct {
	BaseOrgModel
	Code          string `gorm:"type:varchar(50);index"` // ISO27001, NIST_CSF, unique within org
	Name          string `gorm:"type:varchar(255)"`
	Version       string `gorm:"type:varchar(50)"`
	Region        string `gorm:"type:varchar(100)"`
	Description   string `gorm:"type:text"`
	EffectiveDate *time.Time
	IsActive      bool `gorm:"default:true"`
	IsCustom      bool `gorm:"default:false"`
}
