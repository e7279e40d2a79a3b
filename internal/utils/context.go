package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ContextUserIDKey contextKey = "userID"

func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID := ctx.Value(ContextUserIDKey)
	userIDStr, ok := userID.(string)
	return userIDStr, ok
}

// GetUserUUIDFromContext parses the context user ID into a uuid.UUID.
func GetUserUUIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	s, ok := GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
