package apiv1

import (
	"fmt"
	"grc-backend/controllers"
	approvalworkflow "grc-backend/lib/approval-workflow"
	pdfexport "grc-backend/lib/export/pdf"
	xlsexport "grc-backend/lib/export/xls"
	"grc-backend/middleware"
	apimodels "grc-backend/models/api"
	approvalapimodels "grc-backend/models/api/approval"
	"time"

	"github.com/gofiber/fiber/v2"
)

type approvalApiController struct {
	controllers.BaseAPIController
}

func InitApprovalApiRouters(app fiber.Router) {
	controller := approvalApiController{}
	app.Route("approvals", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Post("", controller.create)
		router.Get("export", controller.export)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Post("approve", controller.approve)
			idRoute.Post("reject", controller.reject)
			idRoute.Get("history", controller.history)
			idRoute.Get("history/pdf", controller.historyPdf)
		})
	})
}

func getActor(ctx *fiber.Ctx) approvalapimodels.Actor {
	return approvalapimodels.Actor{
		UserID: middleware.GetUserID(ctx),
		Role:   middleware.GetUserRole(ctx),
		OrgID:  middleware.GetUserOrg(ctx),
	}
}

// @Summary Approval queue
// @Tags Approvals
// @Description Approval requests of the caller organization, newest first
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   status				query	string	false	"pending/approved/rejected"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals [get]
func (c *approvalApiController) list(ctx *fiber.Ctx) error {
	status := approvalapimodels.ParseStatusFilter(ctx.Query("status"))
	list, err := approvalworkflow.Instance.List(middleware.GetUserOrg(ctx), status)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get approval requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, int64(len(list))))
}

// @Summary Request status change
// @Tags Approvals
// @Description Opens an approval request for a control status change
// @Param   Authorization		header	string	true	"Authorization token"
// @Param	body body	approvalapimodels.StatusChangeData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals [post]
func (c *approvalApiController) create(ctx *fiber.Ctx) error {
	var payload approvalapimodels.StatusChangeData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := approvalworkflow.Instance.Create(getActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to create approval request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Export approval queue
// @Tags Approvals
// @Description Approval requests as an Excel workbook
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   status				query	string	false	"pending/approved/rejected"
// @Success 200
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/export [get]
func (c *approvalApiController) export(ctx *fiber.Ctx) error {
	status := approvalapimodels.ParseStatusFilter(ctx.Query("status"))
	list, err := approvalworkflow.Instance.List(middleware.GetUserOrg(ctx), status)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get approval requests for export")
	}
	data, err := xlsexport.Instance.ExportApprovalList(list)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to export approval requests to Excel")
	}
	fileName := fmt.Sprintf("approvals-%v.xlsx", time.Now().Format("20060102-150405"))
	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.SendStream(data)
}

// @Summary Approval request
// @Tags Approvals
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.ApprovalRequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id} [get]
func (c *approvalApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := approvalworkflow.Instance.GetByID(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get approval request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Approve
// @Tags Approvals
// @Description Approves the request at its current level, the last level resolves it
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "request ID"
// @Param	body body	approvalapimodels.ApproveData	false	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.DecisionResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/approve [post]
func (c *approvalApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	var payload approvalapimodels.ApproveData
	if len(ctx.Body()) != 0 {
		if err = c.BodyParser(ctx, &payload); err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
		}
	}

	result, err := approvalworkflow.Instance.Approve(getActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to approve request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Reject
// @Tags Approvals
// @Description Rejects the request at any level, comments are required
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "request ID"
// @Param	body body	approvalapimodels.RejectData	true	"request body"
// @Success 200 {object} apimodels.Response{data=approvalapimodels.DecisionResult}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/reject [post]
func (c *approvalApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	var payload approvalapimodels.RejectData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := approvalworkflow.Instance.Reject(getActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to reject request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Decision history
// @Tags Approvals
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "request ID"
// @Success 200 {object} apimodels.Response{data=[]approvalapimodels.WorkflowStepView}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/history [get]
func (c *approvalApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	result, err := approvalworkflow.Instance.History(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get approval history")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Decision history report
// @Tags Approvals
// @Description Request summary and its decisions as a PDF document
// @Param   Authorization		header	string	true	"Authorization token"
// @Param   id          		path    string  true    "request ID"
// @Success 200
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approvals/{id}/history/pdf [get]
func (c *approvalApiController) historyPdf(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}

	rec, steps, err := approvalworkflow.Instance.GetWithHistory(middleware.GetUserOrg(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to get approval history")
	}
	data, err := pdfexport.ApprovalHistoryReport(*rec, steps)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Failed to build approval history report")
	}
	ctx.Set("Content-Type", "application/pdf")
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="approval-%v.pdf"`, id))
	return ctx.Send(data)
}
