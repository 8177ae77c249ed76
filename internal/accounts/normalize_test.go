package accounts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCanonicalizesTextFields(t *testing.T) {
	data := map[string]any{
		"email":    "User@Example.COM",
		"name":     "Ali Hamza",
		"role":     "admin",
		"password": "Secret123",
	}
	got := Normalize(data)

	assert.Equal(t, "user@example.com", got["email"])
	assert.Equal(t, "ali hamza", got["name"])
	assert.Equal(t, "ADMIN", got["role"])
	assert.Equal(t, "Secret123", got["password"], "password must pass through untouched")
}

func TestNormalizeLeavesNonTextValues(t *testing.T) {
	data := map[string]any{
		"email": 42,
		"role":  nil,
		"extra": []string{"x"},
	}
	got := Normalize(data)

	assert.Equal(t, 42, got["email"])
	assert.Nil(t, got["role"])
	assert.Equal(t, []string{"x"}, got["extra"])
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []map[string]any{
		{"email": "User@Example.COM", "name": "Ali Hamza", "role": "viewer"},
		{"email": 1, "name": true},
		{},
		{"role": "ADMIN"},
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	data := map[string]any{"email": "User@Example.COM"}
	Normalize(data)
	assert.Equal(t, "User@Example.COM", data["email"])
}

func TestPresentUserInfo(t *testing.T) {
	created := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	user := &User{
		Email:     "user@example.com",
		Name:      "ali hamza",
		Role:      RoleAdmin,
		CreatedAt: created,
	}

	info := PresentUserInfo(user, false)
	assert.Equal(t, "Ali Hamza", info.Name)
	assert.Equal(t, "user@example.com", info.Email)
	assert.Equal(t, "Admin", info.Role)
	assert.Empty(t, info.Date)

	withDate := PresentUserInfo(user, true)
	assert.Equal(t, "2025-03-14T09:30:00Z", withDate.Date)
}
