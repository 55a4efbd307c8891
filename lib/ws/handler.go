package ws

import (
	"grc-backend/config"
	wsclient "grc-backend/lib/ws/client"
	connectionhub "grc-backend/lib/ws/hub/connection-hub"
	"grc-backend/middleware"
	"grc-backend/models"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func InitWs(app fiber.Router) {
	app.Use("", func(ctx *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(ctx) {
			return fiber.ErrUpgradeRequired
		}
		ctx.Locals("userID", middleware.GetUserID(ctx))
		ctx.Locals("orgID", middleware.GetUserOrg(ctx))
		ctx.Locals("role", string(middleware.GetUserRole(ctx)))
		return ctx.Next()
	})
	app.Get("/", websocket.New(notificationHandler))
}

// @Summary Approval notifications push
// @Tags Websocket
// @Description Pushes approval notifications addressed to the caller or the caller's role
// @Param   token		query		string		true		"Authorization token"
// @Success 200 {object} wsmodels.ServerMessage
// @Failure 400
// @Failure 403
// @Failure 500
// @router /api/v1/ws [get]
func notificationHandler(c *websocket.Conn) {
	userID := c.Locals("userID").(string)
	orgID := c.Locals("orgID").(string)
	role := models.UserRole(c.Locals("role").(string))
	client := wsclient.NewClient(userID, c, wsclient.Settings{
		PingInterval: time.Duration(config.Conf.Ws.PingIntervalSec) * time.Second,
		PongWait:     time.Duration(config.Conf.Ws.PongWaitSec) * time.Second,
	})
	connectionhub.Instance.AddClient(orgID, userID, role, c)
	defer func() {
		connectionhub.Instance.DeleteClient(userID, c)
	}()
	client.Dispatch()
}
