package fiberlog

import (
	authutils "grc-backend/lib/utils/auth-utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	TagPid       = "pid"
	TagLatency   = "latency"
	TagStatus    = "status"
	TagMethod    = "method"
	TagPath      = "path"
	TagURL       = "url"
	TagIP        = "ip"
	TagUA        = "user_agent"
	TagBody      = "body"
	TagResBody   = "res_body"
	TagBytesSent = "bytes_sent"
	RequestID    = "request_id"
	TagUserID    = "user_id"
	TagOrgID     = "org_id"
)

// bodyLimit longer bodies are cut in the log line
const bodyLimit = 2048

type data struct {
	pid   int
	start time.Time
	end   time.Time
}

// FuncTag returns the value logged under a tag
type FuncTag func(c *fiber.Ctx, d *data) interface{}

func getFuncTagMap(cfg Config, d *data) map[string]FuncTag {
	all := map[string]FuncTag{
		TagPid: func(_ *fiber.Ctx, d *data) interface{} {
			return d.pid
		},
		TagLatency: func(_ *fiber.Ctx, d *data) interface{} {
			return d.end.Sub(d.start).String()
		},
		TagStatus: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Response().StatusCode()
		},
		TagMethod: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Method()
		},
		TagPath: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Path()
		},
		TagURL: func(c *fiber.Ctx, _ *data) interface{} {
			return c.OriginalURL()
		},
		TagIP: func(c *fiber.Ctx, _ *data) interface{} {
			return c.IP()
		},
		TagUA: func(c *fiber.Ctx, _ *data) interface{} {
			return c.Get(fiber.HeaderUserAgent)
		},
		TagBody: func(c *fiber.Ctx, _ *data) interface{} {
			if isMultipart(c) {
				return ""
			}
			return cut(string(c.Body()))
		},
		TagResBody: func(c *fiber.Ctx, _ *data) interface{} {
			contentType := string(c.Response().Header.ContentType())
			if len(contentType) < len(fiber.MIMEApplicationJSON) || contentType[:len(fiber.MIMEApplicationJSON)] != fiber.MIMEApplicationJSON {
				return ""
			}
			return cut(string(c.Response().Body()))
		},
		TagBytesSent: func(c *fiber.Ctx, _ *data) interface{} {
			return len(c.Response().Body())
		},
		RequestID: func(c *fiber.Ctx, _ *data) interface{} {
			return c.GetRespHeader(fiber.HeaderXRequestID, c.Get(fiber.HeaderXRequestID))
		},
		TagUserID: func(c *fiber.Ctx, _ *data) interface{} {
			return authutils.GetStringClaim(c, "sub")
		},
		TagOrgID: func(c *fiber.Ctx, _ *data) interface{} {
			return authutils.GetStringClaim(c, "org")
		},
	}
	result := make(map[string]FuncTag, len(cfg.Tags))
	for _, tag := range cfg.Tags {
		if ft, ok := all[tag]; ok {
			result[tag] = ft
		}
	}
	return result
}

func isMultipart(c *fiber.Ctx) bool {
	contentType := c.Get(fiber.HeaderContentType)
	return len(contentType) >= len(fiber.MIMEMultipartForm) && contentType[:len(fiber.MIMEMultipartForm)] == fiber.MIMEMultipartForm
}

func cut(value string) string {
	if len(value) > bodyLimit {
		return value[:bodyLimit] + "..."
	}
	return value
}
