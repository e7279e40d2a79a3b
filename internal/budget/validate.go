package budget

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/centravo/budget-backend/internal/apperr"
	"github.com/shopspring/decimal"
)

// Requested amounts are bounded to keep numeric(14,2) columns safe.
var maxRequestAmount = decimal.NewFromInt(1_000_000_000)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes HTML-style tags from free text and collapses the
// surrounding whitespace.
func StripMarkup(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// ValidateAmount enforces the request-amount rules: strictly positive,
// below the ceiling, at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return apperr.Validationf("requested_amount must be greater than zero")
	}
	if amount.GreaterThan(maxRequestAmount) {
		return apperr.Validationf("requested_amount exceeds the maximum of %s", maxRequestAmount.String())
	}
	if !amount.Equal(amount.Round(2)) {
		return apperr.Validationf("requested_amount may have at most 2 decimal places")
	}
	return nil
}

// ValidateDescription strips markup and checks the remaining length.
// Returns the sanitized text.
func ValidateDescription(s string) (string, error) {
	clean := StripMarkup(s)
	n := utf8.RuneCountInString(clean)
	if n < 10 {
		return "", apperr.Validationf("description must be at least 10 characters")
	}
	if n > 1000 {
		return "", apperr.Validationf("description must be at most 1000 characters")
	}
	return clean, nil
}
