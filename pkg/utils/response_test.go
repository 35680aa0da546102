package utils

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "workorder-system/pkg/errors"
)

func respond(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, ErrorResponse(c, err, zap.NewNop()))
	return rec
}

func TestErrorResponse(t *testing.T) {
	rec := respond(t, apperrors.NewHttpError(http.StatusConflict, "устарело", errors.New("stale"), nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"status":false,"message":"устарело"}`, rec.Body.String())

	rec = respond(t, apperrors.NewInvalidInputError("формат %s", "pdf"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "формат pdf")

	type payload struct {
		ID string `validate:"required"`
	}
	verr := validator.New().Struct(payload{})
	rec = respond(t, verr)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "'ID'")

	rec = respond(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSuccessResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, SuccessResponse(c, []string{"P1"}, "Successfully", http.StatusOK))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":true,"body":["P1"],"message":"Successfully"}`, rec.Body.String())
}
