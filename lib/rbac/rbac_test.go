package rbac

import (
	"testing"

	"grc-backend/models"

	"github.com/stretchr/testify/require"
)

func TestRbac(t *testing.T) {
	t.Run(`swagger pattern parsing`, func(t *testing.T) {
		path, method, err := parseSwaggerPattern("/api/v1/approvals/{id}/approve [post]")
		require.Nil(t, err)
		require.Equal(t, POST, method)
		require.Equal(t, "/api/v1/approvals/{id}/approve", path)

		path, method, err = parseSwaggerPattern(" api//v1/evidence/ [get] ")
		require.Nil(t, err)
		require.Equal(t, GET, method)
		require.Equal(t, "/api/v1/evidence", path)

		path, method, err = parseSwaggerPattern("/api/v1/frameworks/{code} [put]")
		require.Nil(t, err)
		require.Equal(t, PUT, method)
		require.Equal(t, "/api/v1/frameworks/{code}", path)

		_, _, err = parseSwaggerPattern("/api/v1/approvals")
		require.NotNil(t, err)
		_, _, err = parseSwaggerPattern("/api/v1/approvals [ ]")
		require.NotNil(t, err)
	})

	t.Run(`route matching`, func(t *testing.T) {
		rule := routeRule{segments: []string{"api", "v1", "approvals", "", "approve"}}
		require.True(t, rule.match(splitPath("/api/v1/approvals/123-321/approve")))
		require.False(t, rule.match(splitPath("/api/v1/approvals/approve")))
		require.False(t, rule.match(splitPath("/api/v1/approvals/1/2/approve")))
		require.False(t, rule.match(splitPath("/api/v1/approvals/1/reject")))
	})

	t.Run(`normalizePath check`, func(t *testing.T) {
		require.Equal(t, "/", normalizePath(""))
		require.Equal(t, "/api/v1/approvals", normalizePath("api//v1/approvals/"))
	})

	t.Run(`approval rules`, func(t *testing.T) {
		NewHandler()
		approve, found := Instance.GetRuleFunc("POST", "/api/v1/approvals/42/approve")
		require.True(t, found)
		require.True(t, approve("org", "u", models.CisoRole, ""))
		require.True(t, approve("org", "u", models.ComplianceManagerRole, ""))
		require.True(t, approve("org", "u", models.AdminRole, ""))
		require.False(t, approve("org", "u", models.AuditorRole, ""))
		require.False(t, approve("org", "u", models.ViewerRole, ""))

		create, found := Instance.GetRuleFunc("post", "/api/v1/approvals/")
		require.True(t, found)
		require.False(t, create("org", "u", models.CisoRole, ""))
		require.True(t, create("org", "u", models.ComplianceManagerRole, ""))

		view, found := Instance.GetRuleFunc("GET", "/api/v1/approvals/42/history")
		require.True(t, found)
		require.True(t, view("org", "u", models.ViewerRole, ""))

		export, found := Instance.GetRuleFunc("GET", "/api/v1/approvals/export")
		require.True(t, found)
		require.False(t, export("org", "u", models.ViewerRole, ""))

		get, found := Instance.GetRuleFunc("GET", "/api/v1/approvals/42")
		require.True(t, found)
		require.True(t, get("org", "u", models.ViewerRole, ""))

		_, found = Instance.GetRuleFunc("PATCH", "/api/v1/approvals/42")
		require.False(t, found)
	})

	t.Run(`evidence rules`, func(t *testing.T) {
		NewHandler()
		upload, found := Instance.GetRuleFunc("POST", "/api/v1/evidence/upload")
		require.True(t, found)
		require.True(t, upload("org", "u", models.ComplianceManagerRole, ""))
		require.False(t, upload("org", "u", models.AuditorRole, ""))

		verify, found := Instance.GetRuleFunc("GET", "/api/v1/evidence/e1/verify")
		require.True(t, found)
		require.True(t, verify("org", "u", models.AuditorRole, ""))
		require.False(t, verify("org", "u", models.ViewerRole, ""))
	})

	t.Run(`framework and policy rules`, func(t *testing.T) {
		NewHandler()
		update, found := Instance.GetRuleFunc("PUT", "/api/v1/frameworks/ISO27001")
		require.True(t, found)
		require.True(t, update("org", "u", models.ComplianceManagerRole, ""))
		require.False(t, update("org", "u", models.AuditorRole, ""))

		view, found := Instance.GetRuleFunc("GET", "/api/v1/frameworks/ISO27001")
		require.True(t, found)
		require.True(t, view("org", "u", models.ViewerRole, ""))

		link, found := Instance.GetRuleFunc("POST", "/api/v1/policies/link")
		require.True(t, found)
		require.True(t, link("org", "u", models.AdminRole, ""))
		require.False(t, link("org", "u", models.CisoRole, ""))

		unlink, found := Instance.GetRuleFunc("DELETE", "/api/v1/policies/link/p1/c1")
		require.True(t, found)
		require.False(t, unlink("org", "u", models.ViewerRole, ""))

		controls, found := Instance.GetRuleFunc("GET", "/api/v1/policies/p1/controls")
		require.True(t, found)
		require.True(t, controls("org", "u", models.AuditorRole, ""))

		mapping, found := Instance.GetRuleFunc("DELETE", "/api/v1/controls/c1/mappings/m1")
		require.True(t, found)
		require.True(t, mapping("org", "u", models.ComplianceManagerRole, ""))
		require.False(t, mapping("org", "u", models.CisoRole, ""))

		perms := Instance.GetPermissions(models.ViewerRole)
		require.Equal(t, []models.Permission{models.ViewPermission}, perms[models.PolicyModule])
		require.Equal(t, []models.Permission{models.ViewPermission}, perms[models.FrameworkModule])
	})

	t.Run(`permissions`, func(t *testing.T) {
		NewHandler()
		perms := Instance.GetPermissions(models.CisoRole)
		require.Contains(t, perms[models.ApprovalModule], models.FlowPermission)
		require.NotContains(t, perms[models.ApprovalModule], models.CreatePermission)
		require.Nil(t, Instance.GetPermissions("unknown"))
	})
}
