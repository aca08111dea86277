package models

import (
	"time"
)

// User is the read model of a blog user and its roles.
// A nil *User stands for an anonymous viewer.
type User struct {
	ID             string    `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          string    `json:"email" db:"email"`
	IsStaff        bool      `json:"is_staff" db:"is_staff"`
	IsSuperuser    bool      `json:"is_superuser" db:"is_superuser"`
	IsCollaborator bool      `json:"is_collaborator" db:"is_collaborator"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports staff or superuser status
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}
