package frameworkhandler

import (
	"fmt"
	"sync"
	"testing"

	frameworkstore "grc-backend/lib/framework/store"
	"grc-backend/lib/utils/testdb"
	"grc-backend/models"
	frameworkapimodels "grc-backend/models/api/framework"
	dbmodels "grc-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type memAudit struct {
	mu     sync.Mutex
	events []dbmodels.AuditEvent
}

func (m *memAudit) Record(event dbmodels.AuditEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func newHandler(t *testing.T) (Provider, *memAudit) {
	db := testdb.Open(t, &dbmodels.Framework{})
	audit := &memAudit{}
	return NewInstance(frameworkstore.NewInstance(db), audit), audit
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestFrameworkHandler(t *testing.T) {
	t.Run(`create normalizes the code and rejects duplicates`, func(t *testing.T) {
		handler, audit := newHandler(t)
		view, err := handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "iso27001", Name: "ISO/IEC 27001", Version: "2022"})
		require.Nil(t, err)
		require.Equal(t, "ISO27001", view.Code)
		require.True(t, view.IsActive)
		require.NotEmpty(t, view.ID)

		_, err = handler.Create("org-1", "u2", frameworkapimodels.FrameworkData{Code: "ISO27001", Name: "copy"})
		require.True(t, errors.Is(err, models.ErrConflict))

		other, err := handler.Create("org-2", "u3", frameworkapimodels.FrameworkData{Code: "ISO27001", Name: "ISO/IEC 27001"})
		require.Nil(t, err)
		require.NotEqual(t, view.ID, other.ID)

		_, err = handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "bad code", Name: "x"})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))
		_, err = handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "CIS", Name: " "})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))

		require.Len(t, audit.events, 2)
		require.Equal(t, models.AuditFrameworkUpdate, audit.events[0].EventType)
		require.Equal(t, models.AuditResourceFramework, audit.events[0].ResourceType)
	})

	t.Run(`concurrent creates of one code leave one framework`, func(t *testing.T) {
		handler, _ := newHandler(t)
		results := make(chan error, 5)
		wg := sync.WaitGroup{}
		for n := 0; n < 5; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := handler.Create("org-1", fmt.Sprintf("u%v", n), frameworkapimodels.FrameworkData{Code: "NIST_CSF", Name: "NIST CSF"})
				results <- err
			}(n)
		}
		wg.Wait()
		close(results)
		created := 0
		for err := range results {
			if err == nil {
				created++
				continue
			}
			require.True(t, errors.Is(err, models.ErrConflict), err)
		}
		require.Equal(t, 1, created)
		list, err := handler.List("org-1", frameworkapimodels.FrameworkFilter{})
		require.Nil(t, err)
		require.Len(t, list, 1)
	})

	t.Run(`get list and filters are org scoped`, func(t *testing.T) {
		handler, _ := newHandler(t)
		_, err := handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "GDPR", Name: "GDPR", Region: "EU"})
		require.Nil(t, err)
		_, err = handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "INTERNAL", Name: "Internal baseline", IsCustom: true})
		require.Nil(t, err)
		_, err = handler.Create("org-2", "u2", frameworkapimodels.FrameworkData{Code: "SOC2", Name: "SOC 2"})
		require.Nil(t, err)

		got, err := handler.Get("org-1", "gdpr")
		require.Nil(t, err)
		require.Equal(t, "EU", got.Region)
		_, err = handler.Get("org-1", "SOC2")
		require.True(t, errors.Is(err, models.ErrNotFound))

		list, err := handler.List("org-1", frameworkapimodels.FrameworkFilter{})
		require.Nil(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "GDPR", list[0].Code)

		list, err = handler.List("org-1", frameworkapimodels.FrameworkFilter{Region: "EU"})
		require.Nil(t, err)
		require.Len(t, list, 1)

		list, err = handler.List("org-1", frameworkapimodels.FrameworkFilter{IsCustom: boolPtr(true)})
		require.Nil(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "INTERNAL", list[0].Code)
	})

	t.Run(`update changes only the set fields`, func(t *testing.T) {
		handler, _ := newHandler(t)
		_, err := handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "CIS", Name: "CIS Controls", Version: "7", Region: "global"})
		require.Nil(t, err)

		view, err := handler.Update("org-1", "u1", "cis", frameworkapimodels.FrameworkUpdate{Version: strPtr("8")})
		require.Nil(t, err)
		require.Equal(t, "8", view.Version)
		require.Equal(t, "CIS Controls", view.Name)
		require.Equal(t, "global", view.Region)

		_, err = handler.Update("org-1", "u1", "CIS", frameworkapimodels.FrameworkUpdate{})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))
		_, err = handler.Update("org-1", "u1", "CIS", frameworkapimodels.FrameworkUpdate{Name: strPtr("")})
		require.True(t, errors.Is(err, models.ErrInvalidArgument))
		_, err = handler.Update("org-2", "u1", "CIS", frameworkapimodels.FrameworkUpdate{Version: strPtr("9")})
		require.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run(`soft delete keeps the code taken until restored`, func(t *testing.T) {
		handler, _ := newHandler(t)
		_, err := handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "PCI_DSS", Name: "PCI DSS"})
		require.Nil(t, err)

		err = handler.Delete("org-1", "u1", "PCI_DSS")
		require.Nil(t, err)
		_, err = handler.Get("org-1", "PCI_DSS")
		require.True(t, errors.Is(err, models.ErrNotFound))
		err = handler.Delete("org-1", "u1", "PCI_DSS")
		require.True(t, errors.Is(err, models.ErrNotFound))
		list, err := handler.List("org-1", frameworkapimodels.FrameworkFilter{})
		require.Nil(t, err)
		require.Len(t, list, 0)

		_, err = handler.Create("org-1", "u1", frameworkapimodels.FrameworkData{Code: "PCI_DSS", Name: "again"})
		require.True(t, errors.Is(err, models.ErrConflict))

		view, err := handler.Update("org-1", "u1", "PCI_DSS", frameworkapimodels.FrameworkUpdate{IsActive: boolPtr(true)})
		require.Nil(t, err)
		require.True(t, view.IsActive)
		_, err = handler.Get("org-1", "PCI_DSS")
		require.Nil(t, err)
	})
}
