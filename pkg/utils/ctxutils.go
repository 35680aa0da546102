package utils

import (
	"context"

	"workorder-system/pkg/contextkeys"
	apperrors "workorder-system/pkg/errors"
)

// GetUserIDFromCtx - пользователь, которого положил в контекст AuthMiddleware.
func GetUserIDFromCtx(ctx context.Context) (int, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(int)
	if !ok {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}
