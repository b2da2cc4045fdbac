package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spot-resolver/internal/pkg/errors"
	"github.com/spot-resolver/internal/pkg/validator"
)

// parseBody - разбор JSON тела и валидация DTO
func parseBody(c *fiber.Ctx, req interface{}) error {
	if err := c.BodyParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"body": err.Error()})
	}
	return validate(req)
}

// parseQuery - разбор query-параметров и валидация DTO
func parseQuery(c *fiber.Ctx, req interface{}) error {
	if err := c.QueryParser(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"query": err.Error()})
	}
	return validate(req)
}

func validate(req interface{}) error {
	if err := validator.Validate(req); err != nil {
		return errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"validation": err.Error()})
	}
	return nil
}
