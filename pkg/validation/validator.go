package validation

import (
	"github.com/go-playground/validator/v10"

	"workorder-system/pkg/customvalidator"
)

// CustomValidator - обертка для использования в Echo
type CustomValidator struct {
	validator *validator.Validate
}

// Validate реализует интерфейс echo.Validator
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// Engine отдаёт настроенный валидатор тем, кому нужен не echo-интерфейс.
func (cv *CustomValidator) Engine() *validator.Validate {
	return cv.validator
}

// New создает и настраивает валидатор
func New() *CustomValidator {
	v := validator.New()

	registerNullTypes(v)

	// Без правил сервер не должен стартовать.
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		panic("ошибка регистрации валидаторов: " + err.Error())
	}

	return &CustomValidator{validator: v}
}
