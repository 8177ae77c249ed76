package accounts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrmazuu/fyp-prototype/internal/platform/httpx"
	"github.com/mrmazuu/fyp-prototype/internal/shared"
)

// memRepo is an in-memory user store with the same atomicity guarantee the
// real adapter provides: create either wins or observes the duplicate.
type memRepo struct {
	mu      sync.Mutex
	nextID  int64
	byEmail map[string]*User

	findErr   error
	createErr error
}

func newMemRepo() *memRepo {
	return &memRepo{byEmail: make(map[string]*User)}
}

func (m *memRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *memRepo) Create(ctx context.Context, fields NewUserFields) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	if _, exists := m.byEmail[fields.Email]; exists {
		return nil, shared.ErrDuplicateEmail
	}
	role := fields.Role
	if role == "" {
		role = DefaultRole
	}
	m.nextID++
	now := time.Now().UTC()
	user := &User{
		ID:           m.nextID,
		Email:        fields.Email,
		Name:         fields.Name,
		PasswordHash: fields.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.byEmail[fields.Email] = user
	copied := *user
	return &copied, nil
}

func signupAli(t *testing.T, svc *Service) *User {
	t.Helper()
	user, err := svc.Signup(context.Background(), SignupFields{
		Email:    "user@example.com",
		Name:     "ali hamza",
		Password: "Secret123",
		Role:     "ADMIN",
	})
	require.NoError(t, err)
	return user
}

func requireFieldError(t *testing.T, err error, field string) *httpx.Error {
	t.Helper()
	var fail *httpx.Error
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, httpx.KindValidation, fail.Kind)
	assert.Contains(t, fail.Fields, field)
	assert.Len(t, fail.Fields, 1)
	return fail
}

func TestSignupHashesPassword(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)

	user := signupAli(t, svc)

	assert.NotEqual(t, "Secret123", user.PasswordHash)
	assert.True(t, CheckPassword("Secret123", user.PasswordHash))
	assert.False(t, CheckPassword("wrong", user.PasswordHash))
	assert.Equal(t, RoleAdmin, user.Role)
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	_, err := svc.Signup(context.Background(), SignupFields{
		Email:    "user@example.com",
		Name:     "ali hamza",
		Password: "Secret123",
		Role:     "SUPERUSER",
	})
	fail := requireFieldError(t, err, "role")
	assert.Equal(t, "Invalid data", fail.Message)
}

func TestSignupDuplicateEmail(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	signupAli(t, svc)

	_, err := svc.Signup(context.Background(), SignupFields{
		Email:    "user@example.com",
		Name:     "other",
		Password: "Other123",
		Role:     "USER",
	})
	fail := requireFieldError(t, err, "email")
	assert.Equal(t, "Invalid data", fail.Message)
}

func TestSignupConcurrentSameEmail(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Signup(context.Background(), SignupFields{
				Email:    "race@example.com",
				Name:     "racer",
				Password: "Secret123",
				Role:     "USER",
			})
			results <- err
		}()
	}

	var successes, duplicates int
	for i := 0; i < 2; i++ {
		err := <-results
		if err == nil {
			successes++
			continue
		}
		requireFieldError(t, err, "email")
		duplicates++
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, duplicates)
}

func TestSignupStoreFailure(t *testing.T) {
	repo := newMemRepo()
	repo.createErr = errors.New("connection refused")
	svc := NewService(repo, nil)

	_, err := svc.Signup(context.Background(), SignupFields{
		Email:    "user@example.com",
		Name:     "ali hamza",
		Password: "Secret123",
		Role:     "ADMIN",
	})
	var fail *httpx.Error
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, httpx.KindBackend, fail.Kind)
	assert.Equal(t, "Database error occurred while creating user", fail.Message)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewService(newMemRepo(), nil)

	_, err := svc.Login(context.Background(), Credentials{
		Email:    "nobody@example.com",
		Password: "whatever",
		Role:     "ADMIN",
	})
	fail := requireFieldError(t, err, "email")
	assert.Equal(t, "Invalid credentials", fail.Message)
	assert.Equal(t, []string{"Invalid email"}, fail.Fields["email"])
}

func TestLoginWrongPassword(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	signupAli(t, svc)

	_, err := svc.Login(context.Background(), Credentials{
		Email:    "user@example.com",
		Password: "wrong",
		Role:     "ADMIN",
	})
	fail := requireFieldError(t, err, "password")
	assert.Equal(t, []string{"Invalid password"}, fail.Fields["password"])
}

func TestLoginRoleMismatch(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	signupAli(t, svc)

	_, err := svc.Login(context.Background(), Credentials{
		Email:    "user@example.com",
		Password: "Secret123",
		Role:     "viewer",
	})
	fail := requireFieldError(t, err, "role")
	assert.Equal(t, []string{"Role mismatch"}, fail.Fields["role"])
}

func TestLoginRoleMatchIsCaseInsensitive(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	signupAli(t, svc)

	for _, claim := range []string{"Admin", "ADMIN", "admin"} {
		user, err := svc.Login(context.Background(), Credentials{
			Email:    "user@example.com",
			Password: "Secret123",
			Role:     claim,
		})
		require.NoError(t, err, "claim %q", claim)
		assert.Equal(t, RoleAdmin, user.Role)
	}
}

func TestLoginChecksExistenceBeforePassword(t *testing.T) {
	// Unknown user must surface the email field even when the password
	// would also have been wrong.
	svc := NewService(newMemRepo(), nil)

	_, err := svc.Login(context.Background(), Credentials{
		Email:    "nobody@example.com",
		Password: "wrong",
		Role:     "VIEWER",
	})
	requireFieldError(t, err, "email")
}

func TestLookup(t *testing.T) {
	repo := newMemRepo()
	svc := NewService(repo, nil)
	created := signupAli(t, svc)

	user, err := svc.Lookup(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = svc.Lookup(context.Background(), "gone@example.com")
	var fail *httpx.Error
	require.ErrorAs(t, err, &fail)
	assert.Equal(t, httpx.KindAuthentication, fail.Kind)
}
