// Demo data seeder. Creates one company with an admin, a regular user,
// two departments with categories and budgets, directory entries and a
// handful of transactions, so a fresh environment has something to
// click through. Run the server once first so migrations exist.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

var (
	dsn         = flag.String("dsn", os.Getenv("DATABASE_URL"), "Postgres DSN (default: env DATABASE_URL)")
	adminEmail  = flag.String("admin-email", "admin@demo.test", "Email for the seeded admin")
	password    = flag.String("password", "changeme123", "Password for both seeded users")
	dryRun      = flag.Bool("dry-run", false, "Print the plan; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to write rows")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key. 0 = disabled")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}

	if *dryRun {
		fmt.Println("Would create: 1 company, 2 users, 2 departments, 3 categories,")
		fmt.Println("3 budgets, 2 budget requests, 2 suppliers, 1 client, 4 transactions.")
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := sql.Open("pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		fatalf("ping: %v", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		fatalf("begin tx: %v", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op if already committed
	}()

	if *advisoryKey != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, *advisoryKey); err != nil {
			fatalf("advisory lock: %v", err)
		}
	}

	var exists bool
	err = tx.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM accounts.users WHERE email = $1)`, *adminEmail).Scan(&exists)
	if err != nil {
		fatalf("check admin: %v", err)
	}
	if exists {
		fatalf("a user with email %s already exists; refusing to reseed", *adminEmail)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		fatalf("hash password: %v", err)
	}

	now := time.Now()
	companyID := uuid.New()
	adminID := uuid.New()
	userID := uuid.New()
	deptOps := uuid.New()
	deptMkt := uuid.New()
	catSoftware := uuid.New()
	catTravel := uuid.New()
	catAds := uuid.New()

	exec := func(query string, args ...any) {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			fatalf("seed: %v\nquery: %s", err, query)
		}
	}

	exec(`INSERT INTO accounts.companies (id, name, contact_email, size_bucket, created_at, updated_at)
	      VALUES ($1, 'Demo Widgets Ltd', $2, '11-50', $3, $3)`,
		companyID, *adminEmail, now)

	exec(`INSERT INTO accounts.departments (id, company_id, name, active, created_at, updated_at)
	      VALUES ($1, $2, 'Operations', true, $3, $3), ($4, $2, 'Marketing', true, $3, $3)`,
		deptOps, companyID, now, deptMkt)

	exec(`INSERT INTO accounts.users (id, first_name, last_name, email, hashed_password, role, active, first_user, company_id, department_id, created_at, updated_at)
	      VALUES ($1, 'Ada', 'Admin', $2, $3, 'admin', true, true, $4, $5, $6, $6)`,
		adminID, *adminEmail, string(hash), companyID, deptOps, now)

	exec(`INSERT INTO accounts.users (id, first_name, last_name, email, hashed_password, role, active, first_user, company_id, department_id, created_by, created_at, updated_at)
	      VALUES ($1, 'Uri', 'User', 'user@demo.test', $2, 'user', true, false, $3, $4, $5, $6, $6)`,
		userID, string(hash), companyID, deptMkt, adminID, now)

	exec(`INSERT INTO accounts.categories (id, company_id, department_id, name, type, created_at, updated_at)
	      VALUES ($1, $2, $3, 'Software', 'expense', $4, $4),
	             ($5, $2, $3, 'Travel', 'expense', $4, $4),
	             ($6, $2, $7, 'Advertising', 'investment', $4, $4)`,
		catSoftware, companyID, deptOps, now, catTravel, catAds, deptMkt)

	exec(`INSERT INTO finance.budgets (id, company_id, category_id, user_id, max_amount, start_date, end_date, status, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, 25000.00, $5, $6, 'active', $7, $7),
	             ($8, $2, $9, $4, 8000.00,  $5, $6, 'active', $7, $7),
	             ($10, $2, $11, $4, 15000.00, $5, $6, 'active', $7, $7)`,
		uuid.New(), companyID, catSoftware, adminID,
		now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), now,
		uuid.New(), catTravel, uuid.New(), catAds)

	exec(`INSERT INTO finance.budget_requests (id, company_id, user_id, category_id, requested_amount, description, request_date, status, created_at, updated_at)
	      VALUES ($1, $2, $3, $4, 1200.00, 'Annual licences for the design toolchain.', $5, 'pending', $5, $5),
	             ($6, $2, $3, $7, 640.50, 'Team travel for the spring supplier visit.', $5, 'pending', $5, $5)`,
		uuid.New(), companyID, userID, catSoftware, now, uuid.New(), catTravel)

	supplierID := uuid.New()
	clientID := uuid.New()
	exec(`INSERT INTO directory.suppliers (id, company_id, created_by, name, email, active, created_at, updated_at)
	      VALUES ($1, $2, $3, 'Acme Supplies', 'sales@acme.test', true, $4, $4),
	             ($5, $2, $3, 'Globex Services', 'hello@globex.test', true, $4, $4)`,
		supplierID, companyID, adminID, now, uuid.New())
	exec(`INSERT INTO directory.clients (id, company_id, created_by, name, email, active, created_at, updated_at)
	      VALUES ($1, $2, $3, 'Initech', 'billing@initech.test', true, $4, $4)`,
		clientID, companyID, adminID, now)

	exec(`INSERT INTO finance.transactions (id, company_id, user_id, type, amount, description, category_id, supplier_id, transaction_date, status, payment_method, payment_tags, created_at, updated_at)
	      VALUES ($1, $2, $3, 'expense', 499.99, 'Monthly CI minutes', $4, $5, $6, 'completed', 'credit card', '{recurring,infra}', $6, $6),
	             ($7, $2, $3, 'expense', 120.00, 'Taxi to airport', $8, NULL, $6, 'completed', 'cash', '{travel}', $6, $6),
	             ($9, $2, $3, 'income', 5000.00, 'Retainer payment', NULL, NULL, $6, 'completed', 'bank transfer', '{retainer}', $6, $6),
	             ($10, $2, $3, 'expense', 75.00, 'Stock photos', $11, NULL, $6, 'pending', 'credit card', '{}', $6, $6)`,
		uuid.New(), companyID, adminID, catSoftware, supplierID, now,
		uuid.New(), catTravel, uuid.New(), uuid.New(), catAds)

	if err := tx.Commit(); err != nil {
		fatalf("commit: %v", err)
	}

	fmt.Printf("Seeded company %s\n", companyID)
	fmt.Printf("Admin login: %s / %s\n", *adminEmail, *password)
	fmt.Println("User login: user@demo.test /", *password)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
