package apiv1

import (
	"encoding/json"
	"grc-backend/config"
	approvalworkflow "grc-backend/lib/approval-workflow"
	xlsexport "grc-backend/lib/export/xls"
	"grc-backend/lib/rbac"
	authutils "grc-backend/lib/utils/auth-utils"
	"grc-backend/middleware"
	"grc-backend/models"
	apimodels "grc-backend/models/api"
	approvalapimodels "grc-backend/models/api/approval"
	dbmodels "grc-backend/models/db"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	approvalworkflow.Provider
	actor      approvalapimodels.Actor
	status     models.ApprovalStatus
	approveErr error
	rejectCall bool
	list       []approvalapimodels.ApprovalRequestView
}

func (f *fakeEngine) List(orgID string, status models.ApprovalStatus) ([]approvalapimodels.ApprovalRequestView, error) {
	f.actor.OrgID = orgID
	f.status = status
	return f.list, nil
}

func (f *fakeEngine) Approve(actor approvalapimodels.Actor, id string, data approvalapimodels.ApproveData) (approvalapimodels.DecisionResult, error) {
	f.actor = actor
	if f.approveErr != nil {
		return approvalapimodels.DecisionResult{}, f.approveErr
	}
	return approvalapimodels.DecisionResult{
		RequestID:    id,
		Status:       models.ApprovalStatusPending,
		CurrentLevel: 2,
		MaxLevels:    2,
		LevelDecided: 1,
		Message:      "Request approved at level 1. Escalated to level 2.",
	}, nil
}

func (f *fakeEngine) Reject(actor approvalapimodels.Actor, id string, data approvalapimodels.RejectData) (approvalapimodels.DecisionResult, error) {
	f.rejectCall = true
	return approvalapimodels.DecisionResult{RequestID: id, Status: models.ApprovalStatusRejected}, nil
}

func (f *fakeEngine) GetByID(orgID, id string) (approvalapimodels.ApprovalRequestView, error) {
	return approvalapimodels.ApprovalRequestView{}, models.NewNotFound("Approval request not found")
}

func (f *fakeEngine) GetWithHistory(orgID, id string) (*dbmodels.ApprovalRequest, []dbmodels.WorkflowStep, error) {
	return nil, nil, models.NewNotFound("Approval request not found")
}

func newTestApp(t *testing.T, engine *fakeEngine) *fiber.App {
	t.Helper()
	config.Conf = &config.Configuration{}
	config.Conf.Auth.JWTSecret = "test-secret"
	config.Conf.Auth.JWTExpireInSec = 3600
	rbac.NewHandler()
	xlsexport.NewHandler()
	approvalworkflow.Instance = engine

	app := fiber.New()
	apiV1 := app.Group("/api/v1", middleware.AuthorizationRequired(), middleware.IdentityRequired(), middleware.RbacMiddleware())
	InitApprovalApiRouters(apiV1)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string, role models.UserRole) (*http.Response, apimodels.Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if role != "" {
		token, err := authutils.GetToken("user-1", "org-1", role)
		require.NoError(t, err)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var payload apimodels.Response
	if strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	}
	return resp, payload
}

func TestApprovalApi(t *testing.T) {
	t.Run(`missing token is unauthorized`, func(t *testing.T) {
		app := newTestApp(t, &fakeEngine{})
		resp, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/approve", "", "")
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run(`viewer cannot approve`, func(t *testing.T) {
		engine := &fakeEngine{}
		app := newTestApp(t, engine)
		resp, payload := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/approve", "", models.ViewerRole)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.Equal(t, "RBAC_FORBIDDEN", payload.Message)
		require.Empty(t, engine.actor.UserID)
	})

	t.Run(`approve passes the token identity`, func(t *testing.T) {
		engine := &fakeEngine{}
		app := newTestApp(t, engine)
		resp, payload := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/approve", `{"comments":"ok"}`, models.ComplianceManagerRole)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, "success", payload.Status)
		require.Equal(t, approvalapimodels.Actor{UserID: "user-1", Role: models.ComplianceManagerRole, OrgID: "org-1"}, engine.actor)
		data := payload.Data.(map[string]interface{})
		require.Equal(t, "req-1", data["request_id"])
		require.EqualValues(t, 2, data["current_level"])
	})

	t.Run(`conflict maps to 409`, func(t *testing.T) {
		app := newTestApp(t, &fakeEngine{approveErr: models.NewConflict("Request already processed")})
		resp, payload := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/approve", "", models.CisoRole)
		require.Equal(t, fiber.StatusConflict, resp.StatusCode)
		require.Equal(t, "Request already processed", payload.Message)
	})

	t.Run(`forbidden maps to 403`, func(t *testing.T) {
		app := newTestApp(t, &fakeEngine{approveErr: models.NewForbidden("Level 2 requires role ciso")})
		resp, payload := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/approve", "", models.ComplianceManagerRole)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
		require.Equal(t, "Level 2 requires role ciso", payload.Message)
	})

	t.Run(`reject without comments is rejected at the boundary`, func(t *testing.T) {
		engine := &fakeEngine{}
		app := newTestApp(t, engine)
		resp, payload := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/reject", `{"comments":"  "}`, models.CisoRole)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Rejection comments are required", payload.Message)
		require.False(t, engine.rejectCall)
	})

	t.Run(`reject with comments`, func(t *testing.T) {
		engine := &fakeEngine{}
		app := newTestApp(t, engine)
		resp, _ := doRequest(t, app, fiber.MethodPost, "/api/v1/approvals/req-1/reject", `{"comments":"missing evidence"}`, models.CisoRole)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.True(t, engine.rejectCall)
	})

	t.Run(`unknown request is 404`, func(t *testing.T) {
		app := newTestApp(t, &fakeEngine{})
		resp, payload := doRequest(t, app, fiber.MethodGet, "/api/v1/approvals/nope", "", models.AuditorRole)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Approval request not found", payload.Message)

		resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/approvals/nope/history/pdf", "", models.AuditorRole)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run(`list status filter`, func(t *testing.T) {
		engine := &fakeEngine{}
		app := newTestApp(t, engine)
		resp, _ := doRequest(t, app, fiber.MethodGet, "/api/v1/approvals?status=pending", "", models.ViewerRole)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, models.ApprovalStatusPending, engine.status)
		require.Equal(t, "org-1", engine.actor.OrgID)

		resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/approvals?status=bogus", "", models.ViewerRole)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Equal(t, models.ApprovalStatus(""), engine.status)
	})

	t.Run(`export is an xlsx attachment`, func(t *testing.T) {
		engine := &fakeEngine{
			list: []approvalapimodels.ApprovalRequestView{
				{ID: "req-1", ControlID: "control-1", CurrentLevel: 1, MaxLevels: 2, Status: models.ApprovalStatusPending},
			},
		}
		app := newTestApp(t, engine)
		resp, _ := doRequest(t, app, fiber.MethodGet, "/api/v1/approvals/export", "", models.AuditorRole)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".xlsx")
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.True(t, len(body) > 0)

		resp, _ = doRequest(t, app, fiber.MethodGet, "/api/v1/approvals/export", "", models.ViewerRole)
		require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})
}
