package apiv1

import (
	"grc-backend/controllers"
	policyhandler "grc-backend/lib/policy"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"
	policyapimodels "grc-backend/models/api/policy"

	"github.com/gofiber/fiber/v2"
)

type policyApiController struct {
	controllers.BaseAPIController
}

func InitPolicyApiRouters(app fiber.Router) {
	controller := policyApiController{}
	app.Route("policies", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("", controller.create)
		router.Post("link", controller.link)
		router.Delete("link/:policyId/:controlId", controller.unlink)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("", controller.update)
			idRoute.Delete("", controller.delete)
			idRoute.Get("controls", controller.controls)
		})
	})
}

// @Summary Policies
// @Tags Policies
// @Description Active policies with linked control counts and frameworks
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   type				query	string	false	"policy type"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]policyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies [get]
func (c *policyApiController) list(ctx *fiber.Ctx) error {
	var filter policyapimodels.PolicyFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := policyhandler.Instance.List(middleware.GetUserOrg(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get policies")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Create policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	policyapimodels.PolicyData	true	"request body"
// @Success 200 {object} apimodels.Response{data=policyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies [post]
func (c *policyApiController) create(ctx *fiber.Ctx) error {
	var payload policyapimodels.PolicyData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := policyhandler.Instance.Create(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to create policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "policy ID"
// @Success 200 {object} apimodels.Response{data=policyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/{id} [get]
func (c *policyApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := policyhandler.Instance.Get(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Update policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "policy ID"
// @Param	body body	policyapimodels.PolicyUpdate	true	"request body"
// @Success 200 {object} apimodels.Response{data=policyapimodels.PolicyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/{id} [put]
func (c *policyApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload policyapimodels.PolicyUpdate
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := policyhandler.Instance.Update(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to update policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Deactivate policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "policy ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/{id} [delete]
func (c *policyApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = policyhandler.Instance.Delete(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to delete policy")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Policy controls
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "policy ID"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]controlapimodels.ControlView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/{id}/controls [get]
func (c *policyApiController) controls(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := policyhandler.Instance.Controls(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get policy controls")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Link control to policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	policyapimodels.LinkData	true	"request body"
// @Success 200 {object} apimodels.Response{data=policyapimodels.LinkView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/link [post]
func (c *policyApiController) link(ctx *fiber.Ctx) error {
	var payload policyapimodels.LinkData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := policyhandler.Instance.Link(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to link control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Unlink control from policy
// @Tags Policies
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   policyId       		path    string  true    "policy ID"
// @Param   controlId      		path    string  true    "control ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/policies/link/{policyId}/{controlId} [delete]
func (c *policyApiController) unlink(ctx *fiber.Ctx) error {
	policyID, err := c.GetIDByKey(ctx, "policyId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	controlID, err := c.GetIDByKey(ctx, "controlId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = policyhandler.Instance.Unlink(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), policyID, controlID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to unlink control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
