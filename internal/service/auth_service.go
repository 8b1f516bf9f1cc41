package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleantownship/cleantown-service/internal/auth"
	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/events"
	"github.com/cleantownship/cleantown-service/internal/repository"
	"github.com/cleantownship/cleantown-service/internal/session"
	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

// User-facing messages for business errors.
const (
	MsgAlreadyRegistered = "User already registered. Please log in."
	MsgInvalidLogin      = "Invalid email or password. Please try again or register."
)

// RegisterInput is the registration form.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Reporter *domain.Reporter
	Session  domain.Session
	Token    string
}

// AuthService coordinates registration, login and logout.
type AuthService struct {
	reporters  repository.ReporterRepository
	sessions   *session.Manager
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	ReporterRepo repository.ReporterRepository
	Sessions     *session.Manager
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		reporters:  deps.ReporterRepo,
		sessions:   deps.Sessions,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a reporter account. An existing email is rejected and
// left untouched.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Reporter, error) {
	if err := ValidateCredentials(input.Email, input.Password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	reporter := &domain.Reporter{
		Email:    input.Email,
		Password: hash,
		Name:     strings.TrimSpace(input.Name),
		Phone:    strings.TrimSpace(input.Phone),
		Role:     domain.RoleReporter,
	}
	if err := s.reporters.Create(ctx, reporter); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.NewConflict(MsgAlreadyRegistered, nil)
		}
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:    events.EventReporterRegistered,
		Email:   reporter.Email,
		Payload: events.ReporterRegisteredPayload{Name: reporter.Name, Role: reporter.Role},
	})
	return reporter, nil
}

// Login checks credentials and starts a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	reporter, err := s.reporters.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnauthorized(MsgInvalidLogin)
	}
	if err != nil {
		return nil, err
	}
	if err := auth.ComparePassword(reporter.Password, password); err != nil {
		if !auth.IsMismatch(err) {
			s.logger.Warn("stored password hash unusable", zap.String("email", email), zap.Error(err))
		}
		return nil, apperrors.NewUnauthorized(MsgInvalidLogin)
	}

	sess, err := s.sessions.Create(ctx, reporter)
	if err != nil {
		return nil, err
	}
	token, err := s.tokenMgr.GenerateToken(sess)
	if err != nil {
		_ = s.sessions.End(ctx, sess.ID)
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSessionStarted,
		Email:   sess.Email,
		Payload: events.SessionPayload{SessionID: sess.ID, Role: sess.Role},
	})
	return &LoginResult{Reporter: reporter, Session: sess, Token: token}, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, sess domain.Session) error {
	if err := s.sessions.End(ctx, sess.ID); err != nil {
		return err
	}
	s.publish(ctx, events.Event{
		Type:    events.EventSessionEnded,
		Email:   sess.Email,
		Payload: events.SessionPayload{SessionID: sess.ID, Role: sess.Role},
	})
	return nil
}

// SeedAdmin creates or replaces the administrator account.
func (s *AuthService) SeedAdmin(ctx context.Context, email, password, name string) (*domain.Reporter, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	admin := &domain.Reporter{
		Email:    email,
		Password: hash,
		Name:     name,
		Role:     domain.RoleAdmin,
	}
	if err := s.reporters.Upsert(ctx, admin); err != nil {
		return nil, err
	}
	s.logger.Info("administrator seeded", zap.String("email", email))
	return admin, nil
}

// ListReporters returns every registered account ordered by email.
func (s *AuthService) ListReporters(ctx context.Context) ([]domain.Reporter, error) {
	return s.reporters.List(ctx)
}

// GetReporter returns the account registered under email.
func (s *AuthService) GetReporter(ctx context.Context, email string) (*domain.Reporter, error) {
	reporter, err := s.reporters.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("reporter", map[string]any{"email": email})
	}
	if err != nil {
		return nil, err
	}
	return reporter, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.NewString()
	event.Timestamp = time.Now().UTC()
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event", string(event.Type)), zap.Error(err))
	}
}
