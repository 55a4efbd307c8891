package overdueworker

import (
	"context"
	"fmt"
	"grc-backend/config"
	"grc-backend/db"
	approvalrequeststore "grc-backend/lib/approval-request/store"
	approvalworkflow "grc-backend/lib/approval-workflow"
	notificationhandler "grc-backend/lib/notification"
	baseworker "grc-backend/lib/utils/base-worker"
	"grc-backend/lib/utils/helpers"
	"grc-backend/models"
	"time"
)

// RoleResolver maps a level to the role expected to decide on it
type RoleResolver interface {
	ApproverRole(level int) models.UserRole
}

type Notifier interface {
	NotifyRole(orgID string, role models.UserRole, code models.NotificationCode, msg string) error
}

// StartWorker reminds approvers about pending requests past their due date. Request state is never changed.
func StartWorker(ctx context.Context) {
	i := newInstance(
		*baseworker.NewInstance("ApprovalOverdueWorker",
			time.Duration(config.Conf.Approval.OverdueFirstRun)*time.Second,
			time.Duration(config.Conf.Approval.OverdueInterval)*time.Second),
		approvalrequeststore.NewInstance(db.DB),
		approvalworkflow.Instance,
		notificationhandler.Instance,
	)
	go i.Run(ctx, i.handle)
}

func newInstance(base baseworker.BaseImpl, store approvalrequeststore.Provider, roles RoleResolver, notifier Notifier) *impl {
	return &impl{
		BaseImpl: base,
		store:    store,
		roles:    roles,
		notifier: notifier,
		now:      time.Now,
	}
}

type impl struct {
	baseworker.BaseImpl
	store    approvalrequeststore.Provider
	roles    RoleResolver
	notifier Notifier
	now      func() time.Time
}

func (i impl) handle(ctx context.Context) {
	logger := i.GetLogger()
	now := i.now().UTC()
	list, err := i.store.ListOverdue(now)
	if err != nil {
		logger.WithError(err).Error("error getting overdue approval requests")
		return
	}
	sent := 0
	for _, rec := range list {
		if helpers.IsContextDone(ctx) {
			break
		}
		role := i.roles.ApproverRole(rec.CurrentLevel)
		if role == "" {
			continue
		}
		msg := fmt.Sprintf("Approval request %v is overdue since %v and still waits at level %v of %v",
			rec.ID, rec.DueDate.UTC().Format("2006-01-02"), rec.CurrentLevel, rec.MaxLevels)
		err = i.notifier.NotifyRole(rec.OrgID, role, models.NotifyApprovalOverdue, msg)
		if err != nil {
			logger.
				WithError(err).
				WithField("org_id", rec.OrgID).
				WithField("approval_request_id", rec.ID).
				Error("error sending overdue reminder")
			continue
		}
		sent++
	}
	if sent > 0 {
		logger.WithField("count", sent).Info("overdue reminders sent")
	}
}
