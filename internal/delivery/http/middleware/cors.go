package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// DefaultAllowOrigins - фронт карты в dev-режиме
const DefaultAllowOrigins = "http://localhost:3000,http://localhost:5173"

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Пустой allowOrigins - значения для локальной разработки.
func CORS(allowOrigins string) fiber.Handler {
	if allowOrigins == "" {
		allowOrigins = DefaultAllowOrigins
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Accept-Language,Authorization",
		AllowCredentials: allowOrigins != "*",
	})
}
