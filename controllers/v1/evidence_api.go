package apiv1

import (
	"grc-backend/config"
	"grc-backend/controllers"
	evidencehandler "grc-backend/lib/evidence"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"
	evidenceapimodels "grc-backend/models/api/evidence"
	"io"

	"github.com/gofiber/fiber/v2"
)

type evidenceApiController struct {
	controllers.BaseAPIController
}

func InitEvidenceApiRouters(app fiber.Router) {
	controller := evidenceApiController{}
	app.Route("evidence", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("upload", middleware.WithBodyLimit(config.Conf.Evidence.MaxUploadSize), controller.upload)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("download", controller.download)
			idRoute.Get("verify", controller.verify)
		})
	})
}

// @Summary Evidence files
// @Tags Evidence
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   control_id			query	string	false	"control ID"
// @Param   source				query	string	false	"automated/manual"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]evidenceapimodels.EvidenceView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evidence [get]
func (c *evidenceApiController) list(ctx *fiber.Ctx) error {
	var filter evidenceapimodels.EvidenceFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	list, err := evidencehandler.Instance.List(middleware.GetUserOrg(ctx), filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get evidence files")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Upload evidence
// @Tags Evidence
// @Description Stores the file in object storage and records its SHA-256
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   file				formData	file	true	"evidence file"
// @Param   control_id			formData	string	true	"control ID"
// @Param   compliance_period	formData	string	false	"compliance period, e.g. 2024-Q1"
// @Param   notes				formData	string	false	"notes"
// @Success 200 {object} apimodels.Response{data=evidenceapimodels.EvidenceView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 413 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evidence/upload [post]
func (c *evidenceApiController) upload(ctx *fiber.Ctx) error {
	var payload evidenceapimodels.UploadData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if payload.ControlID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("control_id is required"))
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	buffer, err := file.Open()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to open uploaded file")
	}
	defer buffer.Close()
	fileBody, err := io.ReadAll(buffer)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to read uploaded file")
	}

	fileData := evidencehandler.FileData{
		Name:        file.Filename,
		ContentType: file.Header.Get(fiber.HeaderContentType),
		Content:     fileBody,
	}
	result, err := evidencehandler.Instance.Upload(ctx.UserContext(), middleware.GetUserOrg(ctx), middleware.GetUserID(ctx), payload, fileData)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to upload evidence file")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Evidence download link
// @Tags Evidence
// @Description Presigned object storage URL for the file
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "evidence ID"
// @Success 200 {object} apimodels.Response{data=evidenceapimodels.DownloadView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evidence/{id}/download [get]
func (c *evidenceApiController) download(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := evidencehandler.Instance.PresignedURL(ctx.UserContext(), middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get evidence download link")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Verify evidence
// @Tags Evidence
// @Description Recomputes the stored object hash and compares it with the recorded one
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "evidence ID"
// @Success 200 {object} apimodels.Response{data=evidenceapimodels.VerifyView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/evidence/{id}/verify [get]
func (c *evidenceApiController) verify(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := evidencehandler.Instance.Verify(ctx.UserContext(), middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to verify evidence file")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
