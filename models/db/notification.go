package dbmodels

import "grc-backend/models"

// Notification is addressed either to a role inside an org or to a single user
type Notification struct {
	BaseOrgModel
	ToRole    models.UserRole         `gorm:"type:varchar(100);index:idx_notification_target"`
	ToUserID  string                  `gorm:"type:varchar(36);index:idx_notification_target"`
	Code      models.NotificationCode `gorm:"type:varchar(100)"`
	Msg       string                  `gorm:"type:text"`
	Delivered bool                    `gorm:"default:false"`
}
