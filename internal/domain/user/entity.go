// Package user models registered accounts and the taste profile they carry.
package user

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/savvykitchen/savvy/internal/domain/pantry"
)

// User is an account. Accounts created implicitly by a profile write have
// no email.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	pantry.TasteProfile
	CreatedAt time.Time `json:"created_at"`
}

// New registers an account with a fresh id and the default profile.
func New(email string) *User {
	return &User{
		ID:           uuid.NewString(),
		Email:        NormalizeEmail(email),
		TasteProfile: pantry.DefaultTasteProfile(),
		CreatedAt:    time.Now().UTC(),
	}
}

// NormalizeEmail is the key duplicate checks compare on.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
