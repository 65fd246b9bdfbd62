package domain

import "time"

// User represents an authenticated user account in the system.
// Identity is immutable once created; email uniqueness is enforced at write time.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Stored hashed, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Touch updates the UpdatedAt timestamp.
func (u *User) Touch() {
	u.UpdatedAt = time.Now().UTC()
}

// Owns returns true if the user owns the given task.
func (u *User) Owns(t *Task) bool {
	return u != nil && t != nil && t.UserID == u.ID
}
