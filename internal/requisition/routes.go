package requisition

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListRequisitions)
	r.Get("/{requisition_id}", GetRequisition)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(5, 10))
		r.Post("/create", CreateRequisition)
		r.Put("/{requisition_id}/approve", ApproveRequisition)
		r.Put("/{requisition_id}/reject", RejectRequisition)
	})

	return r
}
