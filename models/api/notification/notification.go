package notificationapimodels

import (
	"grc-backend/models"
	dbmodels "grc-backend/models/db"
	"time"
)

const DefaultListLimit = 50

type NotificationView struct {
	ID       string                  `json:"id"`
	ToRole   models.UserRole         `json:"to_role,omitempty"`
	ToUserID string                  `json:"to_user_id,omitempty"`
	Code     models.NotificationCode `json:"code"`
	Msg      string                  `json:"msg"`
	Time     time.Time               `json:"time"`
}

func NotificationConvert(rec dbmodels.Notification) NotificationView {
	return NotificationView{
		ID:       rec.ID,
		ToRole:   rec.ToRole,
		ToUserID: rec.ToUserID,
		Code:     rec.Code,
		Msg:      rec.Msg,
		Time:     rec.CreatedAt,
	}
}
