package apiv1

import (
	"grc-backend/controllers"
	frameworkhandler "grc-backend/lib/framework"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"
	frameworkapimodels "grc-backend/models/api/framework"

	"github.com/gofiber/fiber/v2"
)

type frameworkApiController struct {
	controllers.BaseAPIController
}

func InitFrameworkApiRouters(app fiber.Router) {
	controller := frameworkApiController{}
	app.Route("frameworks", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("", controller.create)
		router.Route(":code", func(codeRoute fiber.Router) {
			codeRoute.Get("", controller.get)
			codeRoute.Put("", controller.update)
			codeRoute.Delete("", controller.delete)
		})
	})
}

// @Summary Frameworks
// @Tags Frameworks
// @Description Active compliance frameworks of the organization
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   region				query	string	false	"region"
// @Param   custom				query	bool	false	"custom frameworks only"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]frameworkapimodels.FrameworkView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/frameworks [get]
func (c *frameworkApiController) list(ctx *fiber.Ctx) error {
	var filter frameworkapimodels.FrameworkFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := frameworkhandler.Instance.List(middleware.GetUserOrg(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get frameworks")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Create framework
// @Tags Frameworks
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	frameworkapimodels.FrameworkData	true	"request body"
// @Success 200 {object} apimodels.Response{data=frameworkapimodels.FrameworkView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/frameworks [post]
func (c *frameworkApiController) create(ctx *fiber.Ctx) error {
	var payload frameworkapimodels.FrameworkData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := frameworkhandler.Instance.Create(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to create framework")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Framework
// @Tags Frameworks
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   code          		path    string  true    "framework code"
// @Success 200 {object} apimodels.Response{data=frameworkapimodels.FrameworkView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/frameworks/{code} [get]
func (c *frameworkApiController) get(ctx *fiber.Ctx) error {
	code, err := c.GetIDByKey(ctx, "code")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := frameworkhandler.Instance.Get(middleware.GetUserOrg(ctx), code)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get framework")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Update framework
// @Tags Frameworks
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   code          		path    string  true    "framework code"
// @Param	body body	frameworkapimodels.FrameworkUpdate	true	"request body"
// @Success 200 {object} apimodels.Response{data=frameworkapimodels.FrameworkView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/frameworks/{code} [put]
func (c *frameworkApiController) update(ctx *fiber.Ctx) error {
	code, err := c.GetIDByKey(ctx, "code")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload frameworkapimodels.FrameworkUpdate
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := frameworkhandler.Instance.Update(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), code, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to update framework")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Deactivate framework
// @Tags Frameworks
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   code          		path    string  true    "framework code"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/frameworks/{code} [delete]
func (c *frameworkApiController) delete(ctx *fiber.Ctx) error {
	code, err := c.GetIDByKey(ctx, "code")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = frameworkhandler.Instance.Delete(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), code)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to delete framework")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
