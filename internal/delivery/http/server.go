package http

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/spot-resolver/internal/config"
	"github.com/spot-resolver/internal/delivery/http/handler"
	"github.com/spot-resolver/internal/delivery/http/middleware"
	"github.com/spot-resolver/internal/pkg/errors"
)

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	// Handlers
	spotHandler     *handler.SpotHandler
	viewportHandler *handler.ViewportHandler
	savedHandler    *handler.SavedHandler
	healthHandler   *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	spotHandler *handler.SpotHandler,
	viewportHandler *handler.ViewportHandler,
	savedHandler *handler.SavedHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Spot Resolver",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:             app,
		config:          cfg,
		logger:          logger,
		spotHandler:     spotHandler,
		viewportHandler: viewportHandler,
		savedHandler:    savedHandler,
		healthHandler:   healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - fiber app (для тестов через app.Test)
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.AllowOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	// Swagger documentation route
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	api.Get("/health", s.healthHandler.Health)

	// Resolution
	api.Post("/resolve", s.spotHandler.Resolve)
	api.Get("/spots/nearest", s.spotHandler.Nearest)

	// Markers
	api.Post("/viewport/reconcile", s.viewportHandler.Reconcile)

	// Saved
	api.Post("/saved/click", s.savedHandler.Click)
	users := api.Group("/users/:user_id")
	users.Get("/saved", s.savedHandler.List)
	users.Post("/saved", s.savedHandler.Save)
	users.Delete("/saved", s.savedHandler.Delete)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки вне обработчиков (404 маршрута, паники) в формате {error:{code,message}}
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := errors.ErrInternalServer.Code

		var fe *fiber.Error
		if stderrors.As(err, &fe) {
			code = fe.Code
			if code < fiber.StatusInternalServerError {
				errCode = errors.ErrInvalidRequest.Code
			}
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    errCode,
				"message": err.Error(),
			},
		})
	}
}
