package notificationhandler

import (
	"grc-backend/config"
	"grc-backend/db"
	notificationstore "grc-backend/lib/notification/store"
	"grc-backend/lib/smtp"
	connectionhub "grc-backend/lib/ws/hub/connection-hub"
	"grc-backend/models"
	notificationapimodels "grc-backend/models/api/notification"
	dbmodels "grc-backend/models/db"
	wsmodels "grc-backend/models/ws"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	NotifyRole(orgID string, role models.UserRole, code models.NotificationCode, msg string) error
	NotifyUser(orgID, userID string, code models.NotificationCode, msg string) error
	List(orgID, userID string, role models.UserRole) ([]notificationapimodels.NotificationView, error)
}

// Pusher delivers to live sessions
type Pusher interface {
	SendMessage(msg wsmodels.ServerMessage) int
}

type Mailer interface {
	SendEMail(from, to, message, subject string) error
}

var Instance Provider

func NewHandler() {
	roleEmails := map[models.UserRole]string{}
	for role, email := range config.Conf.Notification.RoleEmails {
		roleEmails[models.UserRole(role)] = email
	}
	Instance = NewInstance(
		notificationstore.NewInstance(db.DB),
		connectionhub.Instance,
		smtp.Instance,
		config.Conf.Smtp.From,
		roleEmails,
	)
}

func NewInstance(store notificationstore.Provider, pusher Pusher, mailer Mailer, from string, roleEmails map[models.UserRole]string) Provider {
	return impl{
		store:      store,
		pusher:     pusher,
		mailer:     mailer,
		from:       from,
		roleEmails: roleEmails,
	}
}

type impl struct {
	store      notificationstore.Provider
	pusher     Pusher
	mailer     Mailer
	from       string
	roleEmails map[models.UserRole]string
}

func (i impl) NotifyRole(orgID string, role models.UserRole, code models.NotificationCode, msg string) error {
	logger := log.
		WithField("org_id", orgID).
		WithField("to_role", role).
		WithField("code", code)
	rec := dbmodels.Notification{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		ToRole: role,
		Code:   code,
		Msg:    msg,
	}
	err := i.deliver(logger, rec)
	if email, ok := i.roleEmails[role]; ok && email != "" && i.mailer != nil {
		if mailErr := i.mailer.SendEMail(i.from, email, msg, subject(code)); mailErr != nil {
			logger.WithError(mailErr).Error("error sending notification email")
			if err == nil {
				err = errors.Wrap(mailErr, "error sending notification email")
			}
		}
	}
	return err
}

func (i impl) NotifyUser(orgID, userID string, code models.NotificationCode, msg string) error {
	logger := log.
		WithField("org_id", orgID).
		WithField("to_user_id", userID).
		WithField("code", code)
	rec := dbmodels.Notification{
		BaseOrgModel: dbmodels.BaseOrgModel{
			OrgID: orgID,
		},
		ToUserID: userID,
		Code:     code,
		Msg:      msg,
	}
	return i.deliver(logger, rec)
}

func (i impl) List(orgID, userID string, role models.UserRole) ([]notificationapimodels.NotificationView, error) {
	list, err := i.store.List(orgID, userID, role, notificationapimodels.DefaultListLimit)
	if err != nil {
		return nil, err
	}
	result := make([]notificationapimodels.NotificationView, 0, len(list))
	for _, rec := range list {
		result = append(result, notificationapimodels.NotificationConvert(rec))
	}
	return result, nil
}

// deliver stores the notification, then pushes it to live sessions
func (i impl) deliver(logger *log.Entry, rec dbmodels.Notification) error {
	id, err := i.store.Create(rec)
	if err != nil {
		logger.WithError(err).Error("error saving notification")
		return errors.Wrap(err, "error saving notification")
	}
	logger = logger.WithField("notification_id", id)
	pushed := 0
	if i.pusher != nil {
		pushed = i.pusher.SendMessage(wsmodels.ServerMessage{
			ToOrgID:  rec.OrgID,
			ToRole:   string(rec.ToRole),
			ToUserID: rec.ToUserID,
			ID:       id,
			Time:     time.Now().UTC().Format(time.RFC3339),
			Code:     string(rec.Code),
			Msg:      rec.Msg,
		})
	}
	if pushed > 0 {
		if err = i.store.MarkDelivered([]string{id}); err != nil {
			logger.WithError(err).Warn("error marking notification delivered")
		}
	}
	logger.
		WithField("pushed", pushed).
		Info("notification sent")
	return nil
}

func subject(code models.NotificationCode) string {
	switch code {
	case models.NotifyApprovalPending:
		return "Approval pending"
	case models.NotifyApprovalRejected:
		return "Approval rejected"
	case models.NotifyApprovalOverdue:
		return "Approval overdue"
	}
	return string(code)
}
