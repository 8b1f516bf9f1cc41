package dto

import (
	"time"

	"github.com/cleantownship/cleantown-service/internal/domain"
)

// RegisterRequest payload for new reporters.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ReporterResponse is the public view of a reporter; the password never leaves.
type ReporterResponse struct {
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Phone string      `json:"phone"`
	Role  domain.Role `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewReporterResponse maps a reporter for output.
func NewReporterResponse(r *domain.Reporter) ReporterResponse {
	return ReporterResponse{Email: r.Email, Name: r.Name, Phone: r.Phone, Role: r.Role}
}
