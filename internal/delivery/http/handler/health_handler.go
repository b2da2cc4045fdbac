package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/pkg/utils"
	"github.com/spot-resolver/internal/usecase/dto"
)

// HealthChecker - зависимость, которую проверяет /health (postgres, redis)
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler - проверка состояния сервиса
type HealthHandler struct {
	checks  map[string]HealthChecker
	timeout time.Duration
	logger  *zap.Logger
}

// NewHealthHandler создает HealthHandler; nil-зависимости пропускаются
func NewHealthHandler(checks map[string]HealthChecker, logger *zap.Logger) *HealthHandler {
	active := make(map[string]HealthChecker, len(checks))
	for name, hc := range checks {
		if hc != nil {
			active[name] = hc
		}
	}
	return &HealthHandler{
		checks:  active,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Health godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	resp := dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]string, len(h.checks)),
	}

	for name, hc := range h.checks {
		if err := hc.Health(ctx); err != nil {
			h.logger.Warn("Health check failed", zap.String("check", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "healthy" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return utils.SendSuccess(c, resp, nil)
}
