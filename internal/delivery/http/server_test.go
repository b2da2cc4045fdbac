package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/delivery/http/handler"
	"github.com/spot-resolver/internal/domain"
	"github.com/spot-resolver/internal/pkg/errors"
	"github.com/spot-resolver/internal/usecase"
)

type unavailableLoader struct{}

func (unavailableLoader) Load(context.Context, domain.DatasetContext) (*usecase.DatasetSnapshot, error) {
	return nil, errors.ErrDatasetUnavailable
}

func newTestServer() *Server {
	logger := zap.NewNop()
	loader := unavailableLoader{}
	return NewServer(
		&config.Config{},
		logger,
		handler.NewSpotHandler(loader, usecase.NewSelectionResolver(0, 0), logger),
		handler.NewViewportHandler(loader, logger),
		handler.NewSavedHandler(loader, usecase.NewSavedUseCase(nil, loader, logger), logger),
		handler.NewHealthHandler(nil, logger),
	)
}

func TestServer_Routes(t *testing.T) {
	app := newTestServer().App()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/spots/nearest?lat=38&lng=128&date=2026-10-14", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestServer_UnknownRouteUsesErrorEnvelope(t *testing.T) {
	app := newTestServer().App()

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/nope", nil), int((5 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, errors.ErrInvalidRequest.Code, body.Error.Code)
}
