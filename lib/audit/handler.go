package audithandler

import (
	"grc-backend/db"
	auditstore "grc-backend/lib/audit/store"
	dbmodels "grc-backend/models/db"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Provider interface {
	Record(event dbmodels.AuditEvent) error
	List(orgID, resourceType, resourceID string) ([]dbmodels.AuditEvent, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance(auditstore.NewInstance(db.DB))
}

func NewInstance(store auditstore.Provider) Provider {
	return impl{
		store: store,
	}
}

type impl struct {
	store auditstore.Provider
}

func (i impl) Record(event dbmodels.AuditEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	logger := log.
		WithField("org_id", event.OrgID).
		WithField("event_type", event.EventType).
		WithField("resource_type", event.ResourceType).
		WithField("resource_id", event.ResourceID).
		WithField("action", event.Action).
		WithField("user_id", event.UserID)
	id, err := i.store.Create(event)
	if err != nil {
		logger.WithError(err).Error("error saving audit event")
		return errors.Wrap(err, "error saving audit event")
	}
	logger.
		WithField("audit_event_id", id).
		Info("audit event")
	return nil
}

func (i impl) List(orgID, resourceType, resourceID string) ([]dbmodels.AuditEvent, error) {
	return i.store.ListByResource(orgID, resourceType, resourceID)
}
