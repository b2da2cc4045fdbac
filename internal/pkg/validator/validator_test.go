package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spot-resolver/internal/pkg/validator"
)

type contextRequest struct {
	Date string `validate:"required,surf_date"`
	Time string `validate:"omitempty,surf_time"`
}

func TestValidate_SurfDateTime(t *testing.T) {
	assert.NoError(t, validator.Validate(contextRequest{Date: "2026-02-11", Time: "06:00"}))
	assert.NoError(t, validator.Validate(contextRequest{Date: "2026-02-11"}))
	assert.Error(t, validator.Validate(contextRequest{Date: "11.02.2026"}))
	assert.Error(t, validator.Validate(contextRequest{Date: "2026-02-11", Time: "24:00"}))
	assert.Error(t, validator.Validate(contextRequest{Date: "2026-02-11", Time: "6:00"}))
	assert.Error(t, validator.Validate(contextRequest{}))
}

func TestValidate_SurferLevel(t *testing.T) {
	type levelRequest struct {
		Level string `validate:"omitempty,surfer_level"`
	}
	assert.NoError(t, validator.Validate(levelRequest{}))
	assert.NoError(t, validator.Validate(levelRequest{Level: "beginner"}))
	assert.NoError(t, validator.Validate(levelRequest{Level: "ADVANCED"}))
	assert.NoError(t, validator.Validate(levelRequest{Level: "any"}))
	assert.Error(t, validator.Validate(levelRequest{Level: "pro"}))
}
