package accounts

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes free-form payload fields ahead of validation:
// role is upper-cased, email and name are lower-cased. Only string values
// are touched; anything else passes through unchanged. The function is pure
// and idempotent, so it can run before both signup and login validation.
func Normalize(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	if s, ok := out["role"].(string); ok {
		out["role"] = strings.ToUpper(s)
	}
	if s, ok := out["email"].(string); ok {
		out["email"] = strings.ToLower(s)
	}
	if s, ok := out["name"].(string); ok {
		out["name"] = strings.ToLower(s)
	}
	return out
}

// UserInfo is the public projection of an account returned under the
// response envelope's user_info key.
type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Date  string `json:"date,omitempty"`
}

// PresentUserInfo shapes an account for responses: name and role are
// title-cased, the login key passes through unchanged, and the creation
// timestamp, when requested, is surfaced under date.
func PresentUserInfo(u *User, withDate bool) UserInfo {
	title := cases.Title(language.English)
	info := UserInfo{
		Name:  title.String(u.Name),
		Email: u.Email,
		Role:  title.String(string(u.Role)),
	}
	if withDate && !u.CreatedAt.IsZero() {
		info.Date = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return info
}
