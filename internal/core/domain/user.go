package domain

import "strings"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleStudent  Role = "student"
	RoleGuest    Role = "guest"
)

// NormalizeRole lower-cases a stored role value. Role strings gate behavior
// everywhere, so comparisons happen on the folded form only.
func NormalizeRole(v string) Role {
	return Role(strings.ToLower(strings.TrimSpace(v)))
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a directory record stored under users/{id}.
// Role is the sole authorization attribute; a missing Enabled field means
// the account is enabled (fail-open).
type User struct {
	ID           string      `json:"-"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         string      `json:"role,omitempty"`
	Enabled      *bool       `json:"enabled,omitempty"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	CreatedAt    int64       `json:"createdAt,omitempty"`
	Logins       *LoginStats `json:"logins,omitempty"`
}

// LoginStats records when the user has signed in. History entries are keyed
// by a generated id and hold the login timestamp in Unix milliseconds.
type LoginStats struct {
	LastLogin int64            `json:"lastLogin,omitempty"`
	History   map[string]int64 `json:"history,omitempty"`
}

// IsEnabled treats an absent Enabled field as enabled.
func (u *User) IsEnabled() bool {
	return u.Enabled == nil || *u.Enabled
}
