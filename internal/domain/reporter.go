package domain

import "time"

// Role decides which dashboard a reporter sees.
type Role string

const (
	RoleReporter Role = "REPORTER"
	RoleAdmin    Role = "ADMIN"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleReporter || r == RoleAdmin
}

// Reporter is a registered account, keyed by email.
type Reporter struct {
	Email     string    `json:"email"`
	Password  string    `json:"password"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the reporter has cross-owner visibility.
func (r *Reporter) IsAdmin() bool {
	return r != nil && r.Role == RoleAdmin
}
