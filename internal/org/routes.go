package org

import (
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func DepartmentRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListDepartments)
	r.Post("/create", CreateDepartment)
	r.Put("/update/{department_id}", UpdateDepartment)
	r.Delete("/delete/{department_id}", DeleteDepartment)

	return r
}

func CategoryRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListCategories)
	r.Post("/create", CreateCategory)
	r.Put("/update/{category_id}", UpdateCategory)
	r.Delete("/delete/{category_id}", DeleteCategory)

	return r
}

func UserRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/all", ListUsers)
	r.Post("/create", CreateUser)
	r.Put("/update/{user_id}", UpdateUser)

	return r
}

func CompanyRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.SessionMiddleware(auth.SessionInfo{}))

	r.Get("/", GetCompany)
	r.Put("/update", UpdateCompany)

	return r
}
