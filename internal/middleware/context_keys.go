package middleware

import (
	"context"

	"github.com/knbsoft/knb_backend/internal/core/domain"
)

const (
	userIDCtxKey = contextKey("userID")
	roleCtxKey   = contextKey("role")
)

// GetUserIDFromCtx retrieves the authenticated user ID from the context.
func GetUserIDFromCtx(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(string)
	return userID, ok
}

// GetRoleFromCtx retrieves the authenticated user's role from the context.
func GetRoleFromCtx(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(roleCtxKey).(domain.Role)
	return role, ok
}
