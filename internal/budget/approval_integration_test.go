package budget_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/budget"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/notify"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// dbAvailable tracks whether the database connection was established.
var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// No database available; the integration tests skip themselves.
		os.Exit(m.Run())
	}

	db.Connect(databaseURL)
	dbAvailable = true

	auth.Init()
	org.Init()
	budget.Init()

	os.Exit(m.Run())
}

// fixture is one company with an admin, a requester in a department,
// one category and one active budget.
type fixture struct {
	company   auth.Company
	admin     auth.User
	requester auth.User
	dept      org.Department
	category  org.Category
	budget    budget.Budget
}

func newFixture(t *testing.T, budgetCeiling string) *fixture {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	suffix := uuid.New().String()[:8]

	f := &fixture{}
	f.company = auth.Company{Name: "T-" + suffix, ContactEmail: "t-" + suffix + "@test.local"}
	if err := db.DB.Create(&f.company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.company) })

	f.dept = org.Department{CompanyID: f.company.ID, Name: "Dept " + suffix, Active: true}
	if err := db.DB.Create(&f.dept).Error; err != nil {
		t.Fatalf("create department: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.dept) })

	f.admin = auth.User{
		FirstName: "Admin", LastName: "T",
		Email:          "admin-" + suffix + "@test.local",
		HashedPassword: "x",
		Role:           "admin",
		Active:         true,
		CompanyID:      f.company.ID,
		DepartmentID:   &f.dept.ID,
	}
	if err := db.DB.Create(&f.admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.admin) })

	f.requester = auth.User{
		FirstName: "User", LastName: "T",
		Email:          "user-" + suffix + "@test.local",
		HashedPassword: "x",
		Role:           "user",
		Active:         true,
		CompanyID:      f.company.ID,
		DepartmentID:   &f.dept.ID,
	}
	if err := db.DB.Create(&f.requester).Error; err != nil {
		t.Fatalf("create requester: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.requester) })

	f.category = org.Category{
		CompanyID:    f.company.ID,
		DepartmentID: f.dept.ID,
		Name:         "Cat " + suffix,
		Type:         "expense",
	}
	if err := db.DB.Create(&f.category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.category) })

	ceiling, err := decimal.NewFromString(budgetCeiling)
	if err != nil {
		t.Fatalf("bad ceiling: %v", err)
	}
	f.budget = budget.Budget{
		CompanyID:  f.company.ID,
		CategoryID: f.category.ID,
		UserID:     f.admin.ID,
		MaxAmount:  ceiling,
		StartDate:  time.Now().AddDate(0, -1, 0),
		EndDate:    time.Now().AddDate(0, 11, 0),
		Status:     "active",
	}
	if err := db.DB.Create(&f.budget).Error; err != nil {
		t.Fatalf("create budget: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.budget) })

	return f
}

func (f *fixture) newRequest(t *testing.T, amount string) *budget.BudgetRequest {
	t.Helper()
	request, err := budget.CreateRequest(db.DB, notify.LogNotifier{}, &f.requester, budget.CreateRequestInput{
		CategoryID:      f.category.ID,
		RequestedAmount: decimal.RequireFromString(amount),
		Description:     "Integration test request body text.",
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(request) })
	return request
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected an *apperr.Error, got %v", err)
	}
	return ae.Kind
}

// TestApprove_HappyPath verifies that an admin approval flips the status,
// records the reviewer and reports before/after snapshots that subtract
// the approved amount.
func TestApprove_HappyPath(t *testing.T) {
	f := newFixture(t, "1000.00")
	request := f.newRequest(t, "400.00")

	result, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.admin)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	if result.Request.Status != budget.StatusApproved {
		t.Errorf("expected status %q, got %q", budget.StatusApproved, result.Request.Status)
	}
	if result.Request.ReviewedBy == nil || *result.Request.ReviewedBy != f.admin.ID {
		t.Error("expected the reviewer to be recorded")
	}
	if !result.BudgetInfo.TotalBudget.Before.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("before snapshot: got %s", result.BudgetInfo.TotalBudget.Before)
	}
	if !result.BudgetInfo.TotalBudget.After.Equal(decimal.RequireFromString("600")) {
		t.Errorf("after snapshot: got %s", result.BudgetInfo.TotalBudget.After)
	}

	// The ledger agrees once the approval is committed.
	avail, err := budget.AvailableForCategory(db.DB, f.category.ID)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if !avail.Raw.Equal(decimal.RequireFromString("600")) {
		t.Errorf("expected 600 available, got %s", avail.Raw)
	}
}

// TestApprove_InsufficientBudget verifies that a request larger than the
// remaining pool is refused and stays pending.
func TestApprove_InsufficientBudget(t *testing.T) {
	f := newFixture(t, "100.00")
	request := f.newRequest(t, "250.00")

	_, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.admin)
	if kindOf(t, err) != apperr.InsufficientBudget {
		t.Fatalf("expected InsufficientBudget, got %v", err)
	}

	var reloaded budget.BudgetRequest
	if err := db.DB.First(&reloaded, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != budget.StatusPending {
		t.Errorf("a refused approval must leave the request pending, got %q", reloaded.Status)
	}
	if reloaded.ReviewedBy != nil {
		t.Error("a refused approval must not record a reviewer")
	}
}

// TestApprove_TerminalStateIsFinal verifies that approving twice fails with
// InvalidState and that a rejected request cannot be approved afterwards.
// TestApprove_DepartmentCeiling covers the case where the request's own
// category still has room but a sibling category has already drawn down
// the department pool.
func TestApprove_DepartmentCeiling(t *testing.T) {
	f := newFixture(t, "1000.00")

	sibling := org.Category{
		CompanyID:    f.company.ID,
		DepartmentID: f.dept.ID,
		Name:         "Sibling " + uuid.New().String()[:8],
		Type:         "expense",
	}
	if err := db.DB.Create(&sibling).Error; err != nil {
		t.Fatalf("create sibling category: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&sibling) })

	// An approved draw in the sibling category leaves only 100 in the
	// department pool, while f.category alone still shows 1000.
	drawn := budget.BudgetRequest{
		CompanyID:       f.company.ID,
		UserID:          f.requester.ID,
		CategoryID:      sibling.ID,
		RequestedAmount: decimal.RequireFromString("900.00"),
		Description:     "Existing approved draw against the sibling category.",
		RequestDate:     time.Now(),
		Status:          budget.StatusApproved,
		ReviewedBy:      &f.admin.ID,
	}
	if err := db.DB.Create(&drawn).Error; err != nil {
		t.Fatalf("create approved sibling request: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&drawn) })

	request := f.newRequest(t, "400.00")

	_, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.admin)
	if kind := kindOf(t, err); kind != apperr.InsufficientDepartmentBudget {
		t.Fatalf("expected InsufficientDepartmentBudget, got %v (%v)", kind, err)
	}

	var reloaded budget.BudgetRequest
	if err := db.DB.First(&reloaded, "id = ?", request.ID).Error; err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if reloaded.Status != budget.StatusPending {
		t.Fatalf("expected request to stay pending, got %q", reloaded.Status)
	}
}

func TestApprove_TerminalStateIsFinal(t *testing.T) {
	f := newFixture(t, "1000.00")
	request := f.newRequest(t, "100.00")

	if _, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.admin); err != nil {
		t.Fatalf("first approve: %v", err)
	}

	_, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.admin)
	if kindOf(t, err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState on re-approve, got %v", err)
	}

	// Approval is one-way.
	_, err = budget.Reject(db.DB, notify.LogNotifier{}, request.ID, &f.admin)
	if kindOf(t, err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState on reject-after-approve, got %v", err)
	}
}

// TestApprove_NonAdminForbidden verifies the admin gate.
// TestApprove_CheckOrder verifies that existence and state are reported
// before the role gate: a non-admin probing a random id learns only that
// nothing is there, and a terminal request reads as its state.
func TestApprove_CheckOrder(t *testing.T) {
	f := newFixture(t, "1000.00")

	if _, err := budget.Approve(db.DB, notify.LogNotifier{}, uuid.New(), &f.requester); kindOf(t, err) != apperr.NotFound {
		t.Fatalf("expected NotFound for missing request, got %v", err)
	}
	if _, err := budget.Reject(db.DB, notify.LogNotifier{}, uuid.New(), &f.requester); kindOf(t, err) != apperr.NotFound {
		t.Fatalf("expected NotFound for missing request on reject, got %v", err)
	}

	request := f.newRequest(t, "100.00")
	if _, err := budget.Reject(db.DB, notify.LogNotifier{}, request.ID, &f.admin); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.requester); kindOf(t, err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState for rejected request, got %v", err)
	}
}

// TestBudgetRoutes_AdminGate verifies that the budget management routes
// turn a regular user away at the router, before any handler runs.
func TestBudgetRoutes_AdminGate(t *testing.T) {
	f := newFixture(t, "1000.00")

	session := auth.Session{
		SessionID: uuid.New().String(),
		UserID:    f.requester.ID.String(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	if err := db.DB.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&session) })

	server := httptest.NewServer(budget.BudgetRoutes())
	defer server.Close()

	for _, path := range []string{"/statistics", "/emergency-fund"} {
		req, err := http.NewRequest(http.MethodGet, server.URL+path, nil)
		if err != nil {
			t.Fatalf("build request: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: "session_id", Value: session.SessionID})

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("GET %s: expected 403 for a regular user, got %d", path, resp.StatusCode)
		}
	}
}

func TestApprove_NonAdminForbidden(t *testing.T) {
	f := newFixture(t, "1000.00")
	request := f.newRequest(t, "100.00")

	_, err := budget.Approve(db.DB, notify.LogNotifier{}, request.ID, &f.requester)
	if kindOf(t, err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}

// TestUpdateRequest_StatusDroppedForNonAdmin verifies the documented quirk:
// a regular user's status field is silently ignored while the rest of the
// patch still applies.
func TestUpdateRequest_StatusDroppedForNonAdmin(t *testing.T) {
	f := newFixture(t, "1000.00")
	request := f.newRequest(t, "100.00")

	approved := budget.StatusApproved
	newAmount := decimal.RequireFromString("150.00")
	updated, err := budget.UpdateRequest(db.DB, notify.LogNotifier{}, request.ID, &f.requester, budget.UpdateRequestInput{
		RequestedAmount: &newAmount,
		Status:          &approved,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	var reloaded budget.BudgetRequest
	if err := db.DB.First(&reloaded, "id = ?", updated.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != budget.StatusPending {
		t.Errorf("status must stay pending for a non-admin update, got %q", reloaded.Status)
	}
	if !reloaded.RequestedAmount.Equal(newAmount) {
		t.Errorf("amendable fields should still apply, got amount %s", reloaded.RequestedAmount)
	}
}

// TestDeleteRequest_StrangerForbidden verifies that a user cannot delete
// another user's request.
func TestDeleteRequest_StrangerForbidden(t *testing.T) {
	f := newFixture(t, "1000.00")
	request := f.newRequest(t, "100.00")

	stranger := auth.User{
		FirstName: "Other", LastName: "T",
		Email:          "other-" + uuid.New().String()[:8] + "@test.local",
		HashedPassword: "x",
		Role:           "user",
		Active:         true,
		CompanyID:      f.company.ID,
		DepartmentID:   &f.dept.ID,
	}
	if err := db.DB.Create(&stranger).Error; err != nil {
		t.Fatalf("create stranger: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&stranger) })

	err := budget.DeleteRequest(db.DB, request.ID, &stranger)
	if kindOf(t, err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden, got %v", err)
	}
}
