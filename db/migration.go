package db

import (
	dbmodels "grc-backend/models/db"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func AutoMigrateDB() error {
	log.Info("running migrations")
	if err := DB.AutoMigrate(&dbmodels.Framework{}); err != nil {
		return errors.Wrap(err, "error migrating Framework")
	}
	if err := DB.AutoMigrate(&dbmodels.Control{}); err != nil {
		return errors.Wrap(err, "error migrating Control")
	}
	if err := DB.AutoMigrate(&dbmodels.ControlMapping{}); err != nil {
		return errors.Wrap(err, "error migrating ControlMapping")
	}
	if err := DB.AutoMigrate(&dbmodels.Policy{}, &dbmodels.PolicyControlLink{}); err != nil {
		return errors.Wrap(err, "error migrating Policy")
	}
	if err := DB.AutoMigrate(&dbmodels.ApprovalRequest{}); err != nil {
		return errors.Wrap(err, "error migrating ApprovalRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.WorkflowStep{}); err != nil {
		return errors.Wrap(err, "error migrating WorkflowStep")
	}
	if err := DB.AutoMigrate(&dbmodels.EvidenceFile{}); err != nil {
		return errors.Wrap(err, "error migrating EvidenceFile")
	}
	if err := DB.AutoMigrate(&dbmodels.AuditEvent{}); err != nil {
		return errors.Wrap(err, "error migrating AuditEvent")
	}
	if err := DB.AutoMigrate(&dbmodels.Notification{}); err != nil {
		return errors.Wrap(err, "error migrating Notification")
	}
	log.Info("migrations finished")
	return nil
}
