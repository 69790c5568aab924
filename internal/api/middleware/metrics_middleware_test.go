package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type httpCall struct {
	method   string
	endpoint string
	status   int
}

type recordingHTTP struct {
	mu    sync.Mutex
	calls []httpCall
}

func (r *recordingHTTP) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, httpCall{method, endpoint, status})
}

func TestPrometheusMiddleware(t *testing.T) {
	rec := &recordingHTTP{}
	app := fiber.New()
	app.Use(PrometheusMiddleware(rec))
	app.Get("/api/posts/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/api/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "teapot")
	})

	_, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/posts/p1", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/boom", nil))
	require.NoError(t, err)

	require.Len(t, rec.calls, 2)
	assert.Equal(t, httpCall{http.MethodGet, "/api/posts/:id", fiber.StatusOK}, rec.calls[0])
	assert.Equal(t, httpCall{http.MethodGet, "/api/boom", fiber.StatusTeapot}, rec.calls[1])
}
