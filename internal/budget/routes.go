package budget

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func BudgetRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListBudgets)
	r.Get("/available", GetAvailableBudget)
	r.Get("/category/{category_id}", GetBudgetsByCategory)
	r.Get("/{budget_id}", GetBudget)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware(), middleware.RateLimitMiddleware(5, 10))
		r.Post("/create", CreateBudget)
		r.Put("/update/{budget_id}", UpdateBudget)
		r.Delete("/delete/{budget_id}", DeleteBudget)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminMiddleware())
		r.Get("/statistics", StatisticsHandler)
		r.Get("/emergency-fund", EmergencyFundHandler)
	})

	return r
}

func RequestRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListRequests)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(5, 10))
		r.Post("/create", CreateRequestHandler)
		r.Put("/{request_id}/approve", ApproveRequestHandler)
		r.Put("/{request_id}/reject", RejectRequestHandler)
		r.Put("/update/{request_id}", UpdateRequestHandler)
		r.Delete("/delete/{request_id}", DeleteRequestHandler)
	})

	return r
}
