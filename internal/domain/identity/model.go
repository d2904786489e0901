// Package identity manages patient and doctor accounts, credentials, and
// doctor discovery.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account, either a patient or a doctor.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	Role           string    `db:"role" json:"role"`
	Name           string    `db:"name" json:"name"`
	Surname        string    `db:"surname" json:"surname"`
	Phone          string    `db:"phone" json:"phone,omitempty"`
	Specialization *string   `db:"specialization" json:"specialization,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// FullName returns the display name used when enriching appointment and
// report views.
func (u *User) FullName() string {
	return u.Name + " " + u.Surname
}
