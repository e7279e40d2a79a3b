package auth

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/policy"
	"github.com/centravo/budget-backend/internal/utils"
)

// CurrentActor resolves the authenticated user behind a request into a
// policy actor plus the full user row. SessionMiddleware must have run.
func CurrentActor(r *http.Request) (policy.Actor, *User, error) {
	userID, ok := utils.GetUserUUIDFromContext(r.Context())
	if !ok {
		return policy.Actor{}, nil, apperr.Forbiddenf("not authenticated")
	}

	var user User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		return policy.Actor{}, nil, apperr.Forbiddenf("user not found")
	}
	if !user.Active {
		return policy.Actor{}, nil, apperr.Forbiddenf("user is inactive")
	}

	return policy.Actor{
		ID:            user.ID,
		Role:          policy.Role(user.Role),
		CompanyID:     user.CompanyID,
		Authenticated: true,
	}, &user, nil
}
