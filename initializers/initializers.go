package initializers

import (
	"context"
	"grc-backend/config"
	"grc-backend/fiberlog"
	overdueworker "grc-backend/lib/approval-request/overdue-worker"
	approvalworkflow "grc-backend/lib/approval-workflow"
	audithandler "grc-backend/lib/audit"
	controlhandler "grc-backend/lib/control"
	evidencehandler "grc-backend/lib/evidence"
	xlsexport "grc-backend/lib/export/xls"
	frameworkhandler "grc-backend/lib/framework"
	notificationhandler "grc-backend/lib/notification"
	policyhandler "grc-backend/lib/policy"
	"grc-backend/lib/rbac"
	connectionhub "grc-backend/lib/ws/hub/connection-hub"
)

var LoggerConfig *fiberlog.Config

// InitAllServices collaborators first, the approval engine checks they are set
func InitAllServices(ctx context.Context) {
	config.InitConfig()
	LoggerConfig = InitLogger()
	InitDBConnection()
	InitS3(ctx)
	InitSmtp()
	connectionhub.Init()
	audithandler.NewHandler()
	controlhandler.NewHandler()
	frameworkhandler.NewHandler()
	policyhandler.NewHandler()
	notificationhandler.NewHandler()
	approvalworkflow.NewHandler()
	evidencehandler.NewHandler()
	xlsexport.NewHandler()
	rbac.NewHandler()
	go initWorkers(ctx)
}

func initWorkers(ctx context.Context) {
	// reminders for pending requests past their due date
	overdueworker.StartWorker(ctx)
}
