package utils

import (
	"time"

	"github.com/google/uuid"
)

// SessionData is the minimal session view shared between the auth package
// and the middleware, so the middleware never imports auth directly.
type SessionData struct {
	UserID    string
	ExpiresAt time.Time
}

func GenerateUUID() string {
	return uuid.NewString()
}
