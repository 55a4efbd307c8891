package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ErrNotify posts every 5xx response to an external webhook
func ErrNotify(addr string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		statusCode := c.Response().StatusCode()
		if statusCode < http.StatusInternalServerError {
			return err
		}

		var data struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		}
		if unmErr := json.Unmarshal(c.Response().Body(), &data); unmErr != nil {
			log.WithError(unmErr).Warn("error unmarshalling response body in middleware")
		}
		msg := data.Message
		if msg == "" {
			msg = string(c.Response().Body())
		}
		method := c.Method()
		path := c.OriginalURL()
		if r := c.Route(); r != nil {
			path = r.Path
		}
		orgID := GetUserOrg(c)

		go func() {
			payload := fmt.Sprintf(
				`{"code":%d,"method":%q,"path":%q,"org_id":%q,"error":%q}`,
				statusCode, method, path, orgID, msg)
			if _, reqErr := http.Post(addr, fiber.MIMEApplicationJSON, strings.NewReader(payload)); reqErr != nil {
				log.WithError(reqErr).Warn("error sending error notification")
			}
		}()
		return err
	}
}
