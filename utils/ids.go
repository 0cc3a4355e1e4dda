// Package utils contains identifier and user-agent helpers
package utils

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// GenerateULID returns a new ULID for lead/audit/booking rows.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSessionID returns a new session identifier.
func GenerateSessionID() string {
	return uuid.NewString()
}

// IsSessionID reports whether s has the canonical 8-4-4-4-12 UUID form.
// uuid.Parse also accepts braced and URN forms, so the length check keeps the
// gate strict.
func IsSessionID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
