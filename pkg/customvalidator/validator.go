package customvalidator

import (
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"workorder-system/internal/origin"
)

// RegisterCustomValidations регистрирует правила, которые используются в тегах DTO.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("origin_type", isOriginType); err != nil {
		return err
	}
	if err := v.RegisterValidation("form_session", isFormSession); err != nil {
		return err
	}
	return nil
}

func isOriginType(fl validator.FieldLevel) bool {
	return origin.OriginType(fl.Field().String()).Valid()
}

// isFormSession - идентификатор сессии формы в виде UUID.
func isFormSession(fl validator.FieldLevel) bool {
	_, err := uuid.Parse(fl.Field().String())
	return err == nil
}
