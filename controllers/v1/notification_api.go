package apiv1

import (
	"grc-backend/controllers"
	notificationhandler "grc-backend/lib/notification"
	"grc-backend/lib/rbac"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"

	"github.com/gofiber/fiber/v2"
)

type notificationApiController struct {
	controllers.BaseAPIController
}

func InitNotificationApiRouters(app fiber.Router) {
	controller := notificationApiController{}
	app.Get("notifications", controller.list)
	app.Get("profile", controller.profile)
}

// @Summary Notifications
// @Tags Notifications
// @Description Latest notifications addressed to the caller or the caller role
// @Param   Authorization		header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]notificationapimodels.NotificationView}
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/notifications [get]
func (c *notificationApiController) list(ctx *fiber.Ctx) error {
	list, err := notificationhandler.Instance.List(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), middleware.GetUserRole(ctx))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get notifications")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

type profileView struct {
	UserID      string              `json:"user_id"`
	OrgID       string              `json:"org_id"`
	Role        string              `json:"role"`
	RoleName    string              `json:"role_name"`
	Permissions map[string][]string `json:"permissions"`
}

// @Summary Caller profile
// @Tags Notifications
// @Description Identity taken from the token and the permissions of its role
// @Param   Authorization		header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=profileView}
// @Failure 403
// @router /api/v1/profile [get]
func (c *notificationApiController) profile(ctx *fiber.Ctx) error {
	role := middleware.GetUserRole(ctx)
	permissions := map[string][]string{}
	for module, list := range rbac.Instance.GetPermissions(role) {
		for _, permission := range list {
			permissions[string(module)] = append(permissions[string(module)], string(permission))
		}
	}
	result := profileView{
		UserID:      middleware.GetUserID(ctx),
		OrgID:       middleware.GetUserOrg(ctx),
		Role:        string(role),
		RoleName:    role.ToHuman(),
		Permissions: permissions,
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
