package requisition_test

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/centravo/budget-backend/internal/auth"
	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/notify"
	"github.com/centravo/budget-backend/internal/org"
	"github.com/centravo/budget-backend/internal/requisition"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

var dbAvailable bool

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		os.Exit(m.Run())
	}

	db.Connect(databaseURL)
	dbAvailable = true

	auth.Init()
	org.Init()
	requisition.Init()

	os.Exit(m.Run())
}

type fixture struct {
	company auth.Company
	admin   auth.User
	user    auth.User
	dept    org.Department
}

func newFixture(t *testing.T, deptActive bool) *fixture {
	t.Helper()
	if !dbAvailable {
		t.Skip("skipping integration test (requires DATABASE_URL)")
	}

	suffix := uuid.New().String()[:8]

	f := &fixture{}
	f.company = auth.Company{Name: "R-" + suffix, ContactEmail: "r-" + suffix + "@test.local"}
	if err := db.DB.Create(&f.company).Error; err != nil {
		t.Fatalf("create company: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.company) })

	f.dept = org.Department{CompanyID: f.company.ID, Name: "Quality " + suffix, Active: deptActive}
	if err := db.DB.Create(&f.dept).Error; err != nil {
		t.Fatalf("create department: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Exec(`DELETE FROM procurement.requisition_sequences WHERE department_id = ?`, f.dept.ID)
		db.DB.Delete(&f.dept)
	})

	f.admin = auth.User{
		FirstName: "Admin", LastName: "R",
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

	f.user = auth.User{
		FirstName: "User", LastName: "R",
		Email:          "user-" + suffix + "@test.local",
		HashedPassword: "x",
		Role:           "user",
		Active:         true,
		CompanyID:      f.company.ID,
		DepartmentID:   &f.dept.ID,
	}
	if err := db.DB.Create(&f.user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	t.Cleanup(func() { db.DB.Delete(&f.user) })

	return f
}

func (f *fixture) create(t *testing.T, title string) *requisition.PurchaseRequest {
	t.Helper()
	req, err := requisition.Create(db.DB, notify.LogNotifier{}, &f.user, requisition.CreateInput{
		Title:         title,
		TotalAmount:   decimal.RequireFromString("350.00"),
		Justification: "Replacement parts for the line printer.",
		Priority:      "high",
		Items: []requisition.ItemInput{
			{Description: "Print head", Quantity: 2, UnitPrice: decimal.RequireFromString("150.00")},
			{Description: "Ribbon", Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
		},
	})
	if err != nil {
		t.Fatalf("create requisition: %v", err)
	}
	t.Cleanup(func() {
		db.DB.Exec(`DELETE FROM procurement.purchase_request_items WHERE purchase_request_id = ?`, req.ID)
		db.DB.Exec(`DELETE FROM procurement.purchase_request_attachments WHERE purchase_request_id = ?`, req.ID)
		db.DB.Delete(req)
	})
	return req
}

func kindOf(t *testing.T, err error) apperr.Kind {
	t.Helper()
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("expected an *apperr.Error, got %v", err)
	}
	return ae.Kind
}

// TestCreate_UIDSequence verifies the UID shape and that sequence numbers
// keep climbing even after an earlier requisition is deleted.
func TestCreate_UIDSequence(t *testing.T) {
	f := newFixture(t, true)

	first := f.create(t, "First order")
	second := f.create(t, "Second order")

	year := time.Now().Year()
	wantPrefix := fmt.Sprintf("REQ-Q-%d-", year)
	if first.UID != wantPrefix+"001" {
		t.Errorf("first UID: got %q, want %q", first.UID, wantPrefix+"001")
	}
	if second.UID != wantPrefix+"002" {
		t.Errorf("second UID: got %q, want %q", second.UID, wantPrefix+"002")
	}

	// Deleting a requisition must not free its number.
	db.DB.Exec(`DELETE FROM procurement.purchase_request_items WHERE purchase_request_id = ?`, second.ID)
	db.DB.Delete(second)

	third := f.create(t, "Third order")
	if third.UID != wantPrefix+"003" {
		t.Errorf("third UID after deletion: got %q, want %q", third.UID, wantPrefix+"003")
	}
}

// TestCreate_InactiveDepartment verifies that an inactive department blocks
// creation, writes no row and burns no sequence number.
func TestCreate_InactiveDepartment(t *testing.T) {
	f := newFixture(t, false)

	_, err := requisition.Create(db.DB, notify.LogNotifier{}, &f.user, requisition.CreateInput{
		Title:         "Blocked order",
		TotalAmount:   decimal.RequireFromString("100.00"),
		Justification: "Should never make it to the table.",
		Items:         []requisition.ItemInput{{Description: "Widget", Quantity: 1, UnitPrice: decimal.RequireFromString("100.00")}},
	})
	if kindOf(t, err) != apperr.DepartmentInactive {
		t.Fatalf("expected DepartmentInactive, got %v", err)
	}

	var count int64
	db.DB.Model(&requisition.PurchaseRequest{}).Where("department_id = ?", f.dept.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected no requisition rows, found %d", count)
	}

	var seqCount int64
	db.DB.Model(&requisition.Sequence{}).Where("department_id = ?", f.dept.ID).Count(&seqCount)
	if seqCount != 0 {
		t.Errorf("expected no sequence row, found %d", seqCount)
	}
}

// TestApproveReject_StateMachine verifies the admin gate, the terminal
// states and that the rejection reason is stored.
func TestApproveReject_StateMachine(t *testing.T) {
	f := newFixture(t, true)
	req := f.create(t, "State machine order")

	// Non-admin blocked.
	_, err := requisition.Approve(db.DB, notify.LogNotifier{}, req.ID, &f.user)
	if kindOf(t, err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden for non-admin, got %v", err)
	}

	reason := "Budget review pending for this quarter."
	rejected, err := requisition.Reject(db.DB, notify.LogNotifier{}, req.ID, &f.admin, reason)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != requisition.StatusRejected {
		t.Errorf("expected status %q, got %q", requisition.StatusRejected, rejected.Status)
	}
	if rejected.RejectionReason == nil || *rejected.RejectionReason != reason {
		t.Error("expected the rejection reason to be stored")
	}
	if rejected.ReviewedBy == nil || *rejected.ReviewedBy != f.admin.ID {
		t.Error("expected the reviewer to be recorded")
	}

	// Terminal state: no way back.
	_, err = requisition.Approve(db.DB, notify.LogNotifier{}, req.ID, &f.admin)
	if kindOf(t, err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState on approve-after-reject, got %v", err)
	}

	// State is reported before the role gate for non-admins too.
	_, err = requisition.Approve(db.DB, notify.LogNotifier{}, req.ID, &f.user)
	if kindOf(t, err) != apperr.InvalidState {
		t.Fatalf("expected InvalidState for non-admin on a rejected requisition, got %v", err)
	}
}

// TestApproveReject_MissingIsNotFound verifies that a requisition id with
// no row behind it reads as not found regardless of the caller's role.
func TestApproveReject_MissingIsNotFound(t *testing.T) {
	f := newFixture(t, true)

	if _, err := requisition.Approve(db.DB, notify.LogNotifier{}, uuid.New(), &f.user); kindOf(t, err) != apperr.NotFound {
		t.Fatalf("expected NotFound on approve, got %v", err)
	}
	if _, err := requisition.Reject(db.DB, notify.LogNotifier{}, uuid.New(), &f.user, ""); kindOf(t, err) != apperr.NotFound {
		t.Fatalf("expected NotFound on reject, got %v", err)
	}
}
