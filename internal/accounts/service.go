package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mrmazuu/fyp-prototype/internal/platform/httpx"
	"github.com/mrmazuu/fyp-prototype/internal/shared"
)

// Service implements the credential validation pipeline. It is stateless
// with respect to request data; the only shared resource is the user store
// behind the Repository port.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SignupFields is the normalized, transport-validated signup input.
type SignupFields struct {
	Email    string
	Name     string
	Password string
	Role     string
}

// Signup hashes the password and delegates creation to the store. The store
// enforces email uniqueness; a violation comes back as a field-level
// validation failure naming the email field.
func (s *Service) Signup(ctx context.Context, fields SignupFields) (*User, error) {
	role, ok := ParseRole(fields.Role)
	if !ok {
		return nil, httpx.Validation("Invalid data", httpx.FieldErrors{
			"role": {`"` + fields.Role + `" is not a valid choice.`},
		})
	}

	hash, err := HashPassword(fields.Password)
	if err != nil {
		return nil, httpx.Unexpected(err)
	}

	user, err := s.repo.Create(ctx, NewUserFields{
		Email:        fields.Email,
		Name:         fields.Name,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, shared.ErrDuplicateEmail) {
			return nil, httpx.Validation("Invalid data", httpx.FieldErrors{
				"email": {"user with this email already exists."},
			})
		}
		s.logger.Error("create user", slog.Any("error", err))
		return nil, httpx.Backend("Database error occurred while creating user", err)
	}

	s.logger.Info("user created",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)))
	return user, nil
}

// Login runs the ordered credential checks: account existence, password,
// then claimed role. Each failure is the same error kind with a different
// field key, so the response shape never reveals which check tripped.
func (s *Service) Login(ctx context.Context, creds Credentials) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.Validation("Invalid credentials", httpx.FieldErrors{
				"email": {"Invalid email"},
			})
		}
		return nil, httpx.Backend("", err)
	}

	if !CheckPassword(creds.Password, user.PasswordHash) {
		return nil, httpx.Validation("Invalid credentials", httpx.FieldErrors{
			"password": {"Invalid password"},
		})
	}

	// The stored role is already canonical, but the claim may reach this
	// layer un-normalized; both sides are upper-cased before comparing.
	if strings.ToUpper(string(user.Role)) != strings.ToUpper(creds.Role) {
		return nil, httpx.Validation("Invalid credentials", httpx.FieldErrors{
			"role": {"Role mismatch"},
		})
	}

	return user, nil
}

// Lookup resolves the login key an established session was bound to. A
// vanished account invalidates the session rather than surfacing a 404.
func (s *Service) Lookup(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, httpx.Unauthenticated()
		}
		return nil, httpx.Backend("", err)
	}
	return user, nil
}
