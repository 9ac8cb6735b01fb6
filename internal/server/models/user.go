package models

import (
	"github.com/dmitrijs2005/planboard/internal/server/auth"
	"github.com/dmitrijs2005/planboard/internal/timex"
)

// User is one entry of users.json, keyed by username.
type User struct {
	Password          string           `json:"password"`
	Role              auth.Role        `json:"role"`
	CreatedAt         timex.Timestamp  `json:"created_at"`
	LastLogin         *timex.Timestamp `json:"last_login"`
	PasswordChangedAt *timex.Timestamp `json:"password_changed_at,omitempty"`
	CreatedBy         string           `json:"created_by,omitempty"`
}

// UserStats counts accounts per role.
type UserStats struct {
	Total       int `json:"total"`
	SuperAdmins int `json:"super_admins"`
	Users       int `json:"users"`
	Viewers     int `json:"viewers"`
}
