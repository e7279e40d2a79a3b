package requisition

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// departmentInitial picks the first letter of the department name,
// uppercased. Names without a letter fall back to "X".
func departmentInitial(name string) string {
	for _, r := range name {
		if unicode.IsLetter(r) {
			return strings.ToUpper(string(r))
		}
	}
	return "X"
}

// nextUID allocates the next sequence number for the department and
// year and formats the requisition UID. The upsert increments last_seq
// atomically, so two concurrent creations in the same department never
// see the same number, and numbers are never handed out twice.
func nextUID(tx *gorm.DB, departmentID uuid.UUID, departmentName string, year int) (string, error) {
	var seq int
	err := tx.Raw(`
		INSERT INTO procurement.requisition_sequences (department_id, year, last_seq)
		VALUES (?, ?, 1)
		ON CONFLICT (department_id, year)
		DO UPDATE SET last_seq = procurement.requisition_sequences.last_seq + 1
		RETURNING last_seq`,
		departmentID, year,
	).Scan(&seq).Error
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("REQ-%s-%d-%03d", departmentInitial(departmentName), year, seq), nil
}
