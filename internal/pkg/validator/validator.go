package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/spot-resolver/internal/domain"
)

var validate *validator.Validate

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)
)

func init() {
	validate = validator.New()
	// surf_date - yyyy-MM-dd, surf_time - HH:mm
	_ = validate.RegisterValidation("surf_date", func(fl validator.FieldLevel) bool {
		return datePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("surf_time", func(fl validator.FieldLevel) bool {
		return timePattern.MatchString(fl.Field().String())
	})
	_ = validate.RegisterValidation("surfer_level", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseSurferLevel(fl.Field().String())
		return ok
	})
}

// Validate - валидация структуры
func Validate(s interface{}) error {
	return validate.Struct(s)
}

// GetValidator - получить валидатор для кастомной конфигурации
func GetValidator() *validator.Validate {
	return validate
}
