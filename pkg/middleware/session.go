package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"workorder-system/internal/origin"
	apperrors "workorder-system/pkg/errors"
	"workorder-system/pkg/utils"
)

const HeaderFormSession = "X-Form-Session"

// FormSession привязывает запрос к сессии формы из заголовка X-Form-Session.
// Без заголовка проверка устаревших результатов не выполняется.
func FormSession(logger *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderFormSession)
			if raw == "" {
				return next(c)
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				return utils.ErrorResponse(c, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат заголовка "+HeaderFormSession, nil, nil), logger)
			}
			ctx := origin.WithSession(c.Request().Context(), id.String())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
