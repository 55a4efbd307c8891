package apiv1

import (
	"grc-backend/controllers"
	controlhandler "grc-backend/lib/control"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"
	controlapimodels "grc-backend/models/api/control"

	"github.com/gofiber/fiber/v2"
)

type controlApiController struct {
	controllers.BaseAPIController
}

func InitControlApiRouters(app fiber.Router) {
	controller := controlApiController{}
	app.Route("controls", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("", controller.create)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Delete("", controller.delete)
			idRoute.Get("mappings", controller.listMappings)
			idRoute.Post("mappings", controller.addMapping)
			idRoute.Delete("mappings/:mappingId", controller.deleteMapping)
		})
	})
}

// @Summary Controls
// @Tags Controls
// @Description Active controls of the organization
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   framework			query	string	false	"framework code"
// @Param   severity			query	string	false	"critical/high/medium/low"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]controlapimodels.ControlView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls [get]
func (c *controlApiController) list(ctx *fiber.Ctx) error {
	var filter controlapimodels.ControlFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := controlhandler.Instance.List(middleware.GetUserOrg(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get controls")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Create control
// @Tags Controls
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	controlapimodels.ControlData	true	"request body"
// @Success 200 {object} apimodels.Response{data=controlapimodels.ControlView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls [post]
func (c *controlApiController) create(ctx *fiber.Ctx) error {
	var payload controlapimodels.ControlData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := controlhandler.Instance.Create(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to create control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Control
// @Tags Controls
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "control ID"
// @Success 200 {object} apimodels.Response{data=controlapimodels.ControlView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls/{id} [get]
func (c *controlApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := controlhandler.Instance.Get(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Deactivate control
// @Tags Controls
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "control ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls/{id} [delete]
func (c *controlApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = controlhandler.Instance.Delete(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to delete control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Control mappings
// @Tags Controls
// @Description Mappings where the control is the source or the target
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "control ID"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]controlapimodels.MappingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls/{id}/mappings [get]
func (c *controlApiController) listMappings(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := controlhandler.Instance.ListMappings(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get control mappings")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Map control
// @Tags Controls
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "source control ID"
// @Param	body body	controlapimodels.MappingData	true	"request body"
// @Success 200 {object} apimodels.Response{data=controlapimodels.MappingView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls/{id}/mappings [post]
func (c *controlApiController) addMapping(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload controlapimodels.MappingData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := controlhandler.Instance.AddMapping(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to map control")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Delete control mapping
// @Tags Controls
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "control ID"
// @Param   mappingId      		path    string  true    "mapping ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/controls/{id}/mappings/{mappingId} [delete]
func (c *controlApiController) deleteMapping(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	mappingID, err := c.GetIDByKey(ctx, "mappingId")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	err = controlhandler.Instance.DeleteMapping(middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), id, mappingID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to delete control mapping")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
