package auth_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

// testServer is the shared httptest server for all integration tests.
var testServer *httptest.Server

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available; each test skips itself.
		os.Exit(m.Run())
	}

	db.Connect(databaseURL)
	dbAvailable = true

	auth.Init()

	// Mount auth routes on a chi router, matching production setup in main.go.
	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Mount("/auth", auth.SetupRoutes())

	testServer = httptest.NewServer(r)
	defer testServer.Close()

	os.Exit(m.Run())
}

// client returns an HTTP client with a cookie jar so the session cookie
// survives across calls.
func client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, c *http.Client, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := c.Post(testServer.URL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// register creates a fresh company with an admin and registers cleanup.
// Returns the email and password.
func register(t *testing.T, c *http.Client) (email, password string) {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	suffix := uuid.New().String()[:8]
	email = fmt.Sprintf("it-%s@test.local", suffix)
	password = "correct horse battery staple"

	resp := postJSON(t, c, "/auth/register", map[string]string{
		"company_name": "IT Co " + suffix,
		"first_name":   "Inte",
		"last_name":    "Gration",
		"email":        email,
		"password":     password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}

	var out struct {
		CompanyID uuid.UUID `json:"company_id"`
		UserID    uuid.UUID `json:"user_id"`
		Role      string    `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("register: decode response: %v", err)
	}
	if out.Role != "admin" {
		t.Errorf("the bootstrap user should be an admin, got %q", out.Role)
	}

	t.Cleanup(func() {
		db.DB.Exec(`DELETE FROM accounts.sessions WHERE user_id = ?`, out.UserID.String())
		db.DB.Exec(`DELETE FROM accounts.users WHERE id = ?`, out.UserID)
		db.DB.Exec(`DELETE FROM accounts.companies WHERE id = ?`, out.CompanyID)
	})
	return email, password
}

// TestRegisterLoginMe walks the happy path: register, log in, read /auth/me
// with the session cookie.
func TestRegisterLoginMe(t *testing.T) {
	c := client(t)
	email, password := register(t, c)

	resp := postJSON(t, c, "/auth/login", map[string]string{"email": email, "password": password})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	me, err := c.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatalf("GET /auth/me: %v", err)
	}
	defer me.Body.Close()
	if me.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", me.StatusCode)
	}

	var user struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := json.NewDecoder(me.Body).Decode(&user); err != nil {
		t.Fatalf("me: decode: %v", err)
	}
	if user.Email != email {
		t.Errorf("me: expected email %q, got %q", email, user.Email)
	}
}

// TestLogin_WrongPassword verifies that a bad password yields 401 and no
// session cookie.
func TestLogin_WrongPassword(t *testing.T) {
	c := client(t)
	email, _ := register(t, c)

	resp := postJSON(t, c, "/auth/login", map[string]string{"email": email, "password": "wrong"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	me, err := c.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatal(err)
	}
	defer me.Body.Close()
	if me.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 from /auth/me without a session, got %d", me.StatusCode)
	}
}

// TestRegister_DuplicateEmail verifies the conflict path.
func TestRegister_DuplicateEmail(t *testing.T) {
	c := client(t)
	email, _ := register(t, c)

	resp := postJSON(t, c, "/auth/register", map[string]string{
		"company_name": "Another Co",
		"email":        email,
		"password":     "whatever123",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate email, got %d", resp.StatusCode)
	}
}

// TestLogout invalidates the session server-side.
func TestLogout(t *testing.T) {
	c := client(t)
	email, password := register(t, c)

	resp := postJSON(t, c, "/auth/login", map[string]string{"email": email, "password": password})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}

	out := postJSON(t, c, "/auth/logout", nil)
	out.Body.Close()
	if out.StatusCode != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", out.StatusCode)
	}

	// The jar may still hold the old cookie value; the server-side row is
	// gone, so /auth/me must reject it.
	me, err := c.Get(testServer.URL + "/auth/me")
	if err != nil {
		t.Fatal(err)
	}
	defer me.Body.Close()
	if me.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", me.StatusCode)
	}
}
