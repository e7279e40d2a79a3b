package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/centravo/budget-backend/internal/db"
	"github.com/centravo/budget-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RegisterHandler creates a company together with its bootstrap admin.
// The first user of a company is always an admin and is flagged as such.
func RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		CompanyName  string `json:"company_name"`
		ContactEmail string `json:"contact_email"`
		ContactPhone string `json:"contact_phone"`
		SizeBucket   string `json:"size_bucket"`
		FirstName    string `json:"first_name"`
		LastName     string `json:"last_name"`
		Email        string `json:"email"`
		Password     string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.CompanyName == "" || input.Email == "" || input.Password == "" {
		http.Error(w, "company_name, email and password are required", http.StatusBadRequest)
		return
	}

	var existing User
	if err := db.DB.First(&existing, "email = ?", input.Email).Error; err == nil {
		http.Error(w, "Email already taken", http.StatusConflict)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "Server error hashing password", http.StatusInternalServerError)
		return
	}

	company := Company{
		Name:         input.CompanyName,
		ContactEmail: input.ContactEmail,
		ContactPhone: input.ContactPhone,
	}
	if input.SizeBucket != "" {
		company.SizeBucket = input.SizeBucket
	}

	user := User{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		Email:          input.Email,
		HashedPassword: string(hashed),
		Role:           "admin",
		Active:         true,
		FirstUser:      true,
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		user.CompanyID = company.ID
		return tx.Create(&user).Error
	})
	if err != nil {
		http.Error(w, "Failed to register company", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{
		"company_id": company.ID,
		"user_id":    user.ID,
		"email":      user.Email,
		"role":       user.Role,
	})
}

func sessionCookie(value string) *http.Cookie {
	return &http.Cookie{
		Name:     "session_id",
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   false,
	}
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	var user User
	if err := db.DB.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(input.Email))).Error; err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(input.Password)); err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if !user.Active {
		http.Error(w, "Account disabled", http.StatusForbidden)
		return
	}

	sessionID := utils.GenerateUUID()
	expiresAt := time.Now().Add(6 * time.Hour)

	// One session row per user: replace an existing session's ID, create
	// the row otherwise.
	var existing Session
	err := db.DB.First(&existing, "user_id = ?", user.ID.String()).Error
	switch {
	case err == nil:
		err = db.DB.Model(&existing).Updates(Session{SessionID: sessionID, ExpiresAt: expiresAt}).Error
	default:
		err = db.DB.Create(&Session{SessionID: sessionID, UserID: user.ID.String(), ExpiresAt: expiresAt}).Error
	}
	if err != nil {
		http.Error(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(sessionID))
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id":    user.ID,
		"email":      user.Email,
		"role":       user.Role,
		"company_id": user.CompanyID,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie("session_id")
	if err == nil {
		db.DB.Delete(&Session{}, "session_id = ?", cookie.Value)
	}

	expired := sessionCookie("")
	expired.MaxAge = -1
	http.SetCookie(w, expired)
	w.WriteHeader(http.StatusOK)
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var user User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}
