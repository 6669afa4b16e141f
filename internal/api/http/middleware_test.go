package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Avdeevkonst/oauth2-chat/internal/observability"
	apperrors "github.com/Avdeevkonst/oauth2-chat/pkg/util"
)

func newObservedApp(t *testing.T) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), observability.NewMetrics(), time.Second)
	return app, logs
}

func requestLogStatus(t *testing.T, logs *observer.ObservedLogs) int64 {
	t.Helper()
	entries := logs.FilterMessage("request").All()
	require.Len(t, entries, 1)
	status, ok := entries[0].ContextMap()["status"].(int64)
	require.True(t, ok)
	return status
}

func TestRequestLogRecordsMappedErrorStatus(t *testing.T) {
	app, logs := newObservedApp(t)
	app.Get("/missing", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("thing", nil)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.EqualValues(t, fiber.StatusNotFound, requestLogStatus(t, logs))
}

func TestRequestLogRecordsSuccessStatus(t *testing.T) {
	app, logs := newObservedApp(t)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.EqualValues(t, fiber.StatusNoContent, requestLogStatus(t, logs))
}

func TestErrorMapperTranslatesPanics(t *testing.T) {
	app, logs := newObservedApp(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.EqualValues(t, fiber.StatusInternalServerError, requestLogStatus(t, logs))
}
