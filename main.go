package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/budget"
	"github.com/centravo/budget-backend/internal/config"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/directory"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/centravo/budget-backend/internal/notify"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/requisition"
	"github.com/centravo/budget-backend/internal/transactions"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	db.Connect(cfg.Database.URL)

	auth.Init()
	org.Init()
	directory.Init()
	budget.Init()
	requisition.Init()
	transactions.Init()

	notifier := notify.FromConfig(cfg.Pusher)
	budget.Configure(notifier, cfg.Summary.FigureTTL, cfg.Summary.DirectionTTL)
	requisition.Configure(notifier)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/users", org.UserRoutes())
	r.Mount("/departments", org.DepartmentRoutes())
	r.Mount("/categories", org.CategoryRoutes())
	r.Mount("/companies", org.CompanyRoutes())
	r.Mount("/suppliers", directory.SupplierRoutes())
	r.Mount("/clients", directory.ClientRoutes())
	r.Mount("/budgets", budget.BudgetRoutes())
	r.Mount("/budget-requests", budget.RequestRoutes())
	r.Mount("/requisitions", requisition.SetupRoutes())
	r.Mount("/transactions", transactions.SetupRoutes())
	r.Mount("/invoices", transactions.InvoiceRoutes())

	fmt.Println("Server listening on port :" + cfg.Server.Port + "...")

	http.ListenAndServe("0.0.0.0:"+cfg.Server.Port, r)
}
