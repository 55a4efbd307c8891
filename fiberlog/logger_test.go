package fiberlog

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	newApp := func(buf *bytes.Buffer) *fiber.App {
		logger := log.New()
		logger.SetOutput(buf)
		logger.SetFormatter(&log.JSONFormatter{})
		logger.SetLevel(log.InfoLevel)
		app := fiber.New()
		app.Use(New(Config{
			Logger:    logger,
			Tags:      []string{TagMethod, TagPath, TagStatus, TagBody, TagUserID},
			SkipPaths: []string{"/health"},
		}))
		app.Post("/approvals", func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": "fail"})
		})
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run(`request line carries the configured tags`, func(t *testing.T) {
		buf := &bytes.Buffer{}
		app := newApp(buf)
		req := httptest.NewRequest(fiber.MethodPost, "/approvals", bytes.NewBufferString(`{"control_id":"c1"}`))
		_, err := app.Test(req, -1)
		require.NoError(t, err)

		var line map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		require.Equal(t, "api request", line["msg"])
		require.Equal(t, "warning", line["level"])
		require.Equal(t, "POST", line[TagMethod])
		require.Equal(t, "/approvals", line[TagPath])
		require.EqualValues(t, fiber.StatusConflict, line[TagStatus])
		require.Equal(t, `{"control_id":"c1"}`, line[TagBody])
		require.NotContains(t, line, TagUserID)
	})

	t.Run(`skipped paths stay below info`, func(t *testing.T) {
		buf := &bytes.Buffer{}
		app := newApp(buf)
		_, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		require.Empty(t, buf.String())
	})

	t.Run(`long bodies are cut`, func(t *testing.T) {
		long := bytes.Repeat([]byte("a"), bodyLimit+10)
		require.Equal(t, bodyLimit+3, len(cut(string(long))))
		require.Equal(t, "short", cut("short"))
	})
}
