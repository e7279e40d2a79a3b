package directory

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SupplierRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListSuppliers)
	r.Post("/create", CreateSupplier)
	r.Put("/update/{supplier_id}", UpdateSupplier)
	r.Delete("/delete/{supplier_id}", DeleteSupplier)

	return r
}

func ClientRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListClients)
	r.Post("/create", CreateClient)
	r.Put("/update/{client_id}", UpdateClient)
	r.Delete("/delete/{client_id}", DeleteClient)

	return r
}
