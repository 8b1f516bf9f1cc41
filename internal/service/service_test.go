package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/cleantownship/cleantown-service/internal/config"
	"github.com/cleantownship/cleantown-service/internal/domain"
	"github.com/cleantownship/cleantown-service/internal/events"
	"github.com/cleantownship/cleantown-service/internal/repository"
	"github.com/cleantownship/cleantown-service/internal/session"
	apperrors "github.com/cleantownship/cleantown-service/pkg/util"
)

const testPassword = "wecleantown"

func newTestAuthService(t *testing.T) (*AuthService, *repository.MemoryReporterRepository, events.Dispatcher) {
	t.Helper()
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "test-secret", BcryptCost: 4}}
	reporters := repository.NewMemoryReporterRepository()
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewAuthService(cfg, AuthDependencies{
		ReporterRepo: reporters,
		Sessions:     session.NewManager(session.NewMemoryStore(), time.Hour),
		Dispatcher:   dispatcher,
	})
	return svc, reporters, dispatcher
}

func assertDomainError(t *testing.T, err error, wantStatus int) *apperrors.DomainError {
	t.Helper()
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %v", err)
	}
	if domainErr.HTTPStatus != wantStatus {
		t.Fatalf("status = %d, want %d (%v)", domainErr.HTTPStatus, wantStatus, err)
	}
	return domainErr
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	t.Parallel()

	svc, reporters, dispatcher := newTestAuthService(t)
	ctx := context.Background()

	var registered []string
	dispatcher.Subscribe(events.EventReporterRegistered, func(_ context.Context, e events.Event) error {
		registered = append(registered, e.Email)
		return nil
	})

	reporter, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: testPassword, Name: " Asha ", Phone: "555"})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reporter.Role != domain.RoleReporter || reporter.Name != "Asha" {
		t.Errorf("unexpected reporter: %+v", reporter)
	}
	if len(registered) != 1 || registered[0] != "a@x.com" {
		t.Errorf("expected one registration event, got %v", registered)
	}

	stored, err := reporters.GetByEmail(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if stored.Password == testPassword {
		t.Error("password must not be stored in plaintext")
	}

	result, err := svc.Login(ctx, "a@x.com", testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token == "" || result.Session.Email != "a@x.com" || result.Session.IsAdmin() {
		t.Errorf("unexpected login result: %+v", result)
	}
	claims, err := svc.TokenManager().ParseToken(result.Token)
	if err != nil || claims.SessionID != result.Session.ID {
		t.Errorf("token does not reference session: %+v, %v", claims, err)
	}
}

func TestAuthService_RegisterDuplicateKeepsOriginal(t *testing.T) {
	t.Parallel()

	svc, reporters, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: testPassword, Name: "First"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	before, _ := reporters.GetByEmail(ctx, "a@x.com")

	_, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: "another-password", Name: "Second"})
	domainErr := assertDomainError(t, err, http.StatusConflict)
	if domainErr.Message != MsgAlreadyRegistered {
		t.Errorf("unexpected message %q", domainErr.Message)
	}

	after, _ := reporters.GetByEmail(ctx, "a@x.com")
	if after.Name != before.Name || after.Password != before.Password {
		t.Errorf("existing record mutated: before=%+v after=%+v", before, after)
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)

	tests := []struct {
		name      string
		input     RegisterInput
		wantField string
	}{
		{"missing email", RegisterInput{Password: testPassword}, "email"},
		{"bad email", RegisterInput{Email: "not-an-email", Password: testPassword}, "email"},
		{"display name form", RegisterInput{Email: "Asha <a@x.com>", Password: testPassword}, "email"},
		{"missing password", RegisterInput{Email: "a@x.com"}, "password"},
		{"short password", RegisterInput{Email: "a@x.com", Password: "short"}, "password"},
		{"password over bcrypt limit", RegisterInput{Email: "a@x.com", Password: strings.Repeat("a", 80)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Register(context.Background(), tt.input)
			domainErr := assertDomainError(t, err, http.StatusBadRequest)
			if _, ok := domainErr.Details[tt.wantField]; !ok {
				t.Errorf("expected field error for %s, got %v", tt.wantField, domainErr.Details)
			}
		})
	}
}

func TestAuthService_PasswordLengthBoundary(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	longest := strings.Repeat("a", MaxPasswordBytes)
	if _, err := svc.Register(ctx, RegisterInput{Email: "max@x.com", Password: longest}); err != nil {
		t.Fatalf("72-byte password should register: %v", err)
	}
	if _, err := svc.Login(ctx, "max@x.com", longest); err != nil {
		t.Fatalf("72-byte password should log in: %v", err)
	}

	_, err := svc.SeedAdmin(ctx, "admin@x.com", longest+"b", "Admin")
	domainErr := assertDomainError(t, err, http.StatusBadRequest)
	if _, ok := domainErr.Details["password"]; !ok {
		t.Errorf("expected password field error, got %v", domainErr.Details)
	}

	_, err = svc.Login(ctx, "max@x.com", longest+"b")
	assertDomainError(t, err, http.StatusBadRequest)
}

func TestAuthService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	if _, err := svc.Register(ctx, RegisterInput{Email: "a@x.com", Password: testPassword}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"a@x.com", "wrong-password"},
		{"nobody@x.com", testPassword},
		{"admin@cleantownship.com", "wecleantown1"},
	} {
		_, err := svc.Login(ctx, tc.email, tc.password)
		domainErr := assertDomainError(t, err, http.StatusUnauthorized)
		if domainErr.Message != MsgInvalidLogin {
			t.Errorf("%s: unexpected message %q", tc.email, domainErr.Message)
		}
	}
}

type failingReporterRepo struct {
	repository.ReporterRepository
	err error
}

func (f failingReporterRepo) GetByEmail(context.Context, string) (*domain.Reporter, error) {
	return nil, f.err
}

func TestAuthService_LoginStorageFailureIsNotInvalidLogin(t *testing.T) {
	t.Parallel()

	storageErr := errors.New("redis down")
	cfg := config.Config{Auth: config.AuthConfig{JWTSecret: "s", BcryptCost: 4}}
	svc := NewAuthService(cfg, AuthDependencies{
		ReporterRepo: failingReporterRepo{ReporterRepository: repository.NewMemoryReporterRepository(), err: storageErr},
		Sessions:     session.NewManager(session.NewMemoryStore(), time.Hour),
	})

	_, err := svc.Login(context.Background(), "a@x.com", testPassword)
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}

func TestAuthService_SeedAdminAndLogout(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SeedAdmin(ctx, "admin@cleantownship.com", "admin-password", "Admin"); err != nil {
		t.Fatalf("SeedAdmin failed: %v", err)
	}
	result, err := svc.Login(ctx, "admin@cleantownship.com", "admin-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !result.Session.IsAdmin() {
		t.Error("seeded admin session should carry the admin role")
	}

	if err := svc.Logout(ctx, result.Session); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := svc.sessions.Resolve(ctx, result.Session.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("expected session to be gone after logout, got %v", err)
	}
}
