// Package shared holds cross-cutting pieces: the cookie-session manager,
// its context plumbing, and the sentinel errors the store adapters speak.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager issues and resolves cookie sessions backed by Redis.
// A session exists server-side only once Establish has bound it to a user;
// anonymous requests carry an in-memory placeholder that is never persisted.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session is the per-request session handle. The core treats it as opaque:
// it only ever asks who the session belongs to.
type Session struct {
	ID        string
	userID    string
	email     string
	destroyed bool
}

type sessionPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		client:     client,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Load resolves the request cookie to a session. Unknown or absent cookies
// yield a fresh anonymous session; only backend failures return an error.
func (sm *SessionManager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return sm.newSession(), nil
		}
		return nil, err
	}

	payload, err := sm.client.Get(ctx, sm.redisKey(cookie.Value)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			sess := sm.newSession()
			sess.ID = cookie.Value
			return sess, nil
		}
		return nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}

	return &Session{
		ID:     cookie.Value,
		userID: stored.UserID,
		email:  stored.Email,
	}, nil
}

// Establish binds the session to a user and persists it with the configured
// TTL. The session ID is always rotated so a pre-login cookie value never
// becomes an authenticated one. A backend failure leaves the session
// unauthenticated.
func (sm *SessionManager) Establish(ctx context.Context, sess *Session, userID, email string) error {
	if sess == nil {
		return errors.New("shared: no session to establish")
	}
	sess.ID = generateSessionID()
	data, err := json.Marshal(sessionPayload{UserID: userID, Email: email})
	if err != nil {
		return err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.ID), data, sm.ttl).Err(); err != nil {
		return err
	}
	sess.userID = userID
	sess.email = email
	sess.destroyed = false
	return nil
}

// Destroy removes the server-side session state and marks the cookie for
// expiry on the next commit.
func (sm *SessionManager) Destroy(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(sess.ID)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	sess.userID = ""
	sess.email = ""
	sess.destroyed = true
	return nil
}

// WriteCookie reflects the session state onto the response: set for
// established sessions, cleared for destroyed ones, nothing for anonymous.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *Session) {
	if sess == nil {
		return
	}
	if sess.destroyed {
		http.SetCookie(w, &http.Cookie{
			Name:     sm.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   sm.secure,
			SameSite: http.SameSiteStrictMode,
		})
		return
	}
	if sess.ID == "" || sess.userID == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	})
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

// User returns the bound user ID, or "" for anonymous sessions.
func (s *Session) User() string {
	if s == nil {
		return ""
	}
	return s.userID
}

// Email returns the login key the session was established with.
func (s *Session) Email() string {
	if s == nil {
		return ""
	}
	return s.email
}

// Authenticated reports whether the session is bound to a user.
func (s *Session) Authenticated() bool {
	return s.User() != ""
}

func (sm *SessionManager) newSession() *Session {
	return &Session{}
}

func (sm *SessionManager) redisKey(id string) string {
	return "session:" + id
}

func generateSessionID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return base64.RawURLEncoding.EncodeToString([]byte(time.Now().Format(time.RFC3339Nano)))
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
