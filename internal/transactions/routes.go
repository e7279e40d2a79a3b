package transactions

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListTransactions)
	r.Get("/totals", GetTotals)
	r.Get("/department-totals", GetDepartmentTotals)
	r.Get("/{transaction_id}", GetTransaction)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(5, 10))
		r.Post("/create", CreateTransaction)
		r.Put("/update/{transaction_id}", UpdateTransaction)
		r.Delete("/delete/{transaction_id}", DeleteTransaction)
	})

	return r
}

func InvoiceRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListInvoices)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(5, 10))
		r.Post("/create", CreateInvoice)
		r.Delete("/delete/{invoice_id}", DeleteInvoice)
	})

	return r
}
