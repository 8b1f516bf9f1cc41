package domain

import "time"

// Session is the authenticated identity handed to every service call.
// It is created at login and removed at logout or expiry.
type Session struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsAdmin reports whether the session may see every owner's tickets.
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
