package accounts

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mrmazuu/fyp-prototype/internal/platform/httpx"
	"github.com/mrmazuu/fyp-prototype/internal/shared"
)

// Handler wires the HTTP endpoints for the accounts flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers the accounts routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/signup", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/userinfo", h.handleUserInfo)
}

type signupPayload struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required"`
	Role     string `validate:"required,oneof=ADMIN USER VIEWER"`
}

type loginPayload struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Role     string `validate:"required,oneof=ADMIN USER VIEWER"`
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	data, err := decodePayload(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data = Normalize(data)

	payload := signupPayload{
		Email:    stringField(data, "email"),
		Name:     stringField(data, "name"),
		Password: stringField(data, "password"),
		Role:     stringField(data, "role"),
	}
	if fields := h.checkPayload(payload); len(fields) > 0 {
		h.logger.Warn("invalid signup data", slog.Any("errors", fields))
		httpx.RespondError(w, httpx.Validation("Invalid data", fields))
		return
	}

	user, err := h.service.Signup(r.Context(), SignupFields(payload))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.Success(w, http.StatusCreated, "User registered successfully", httpx.Envelope{
		"user_info": PresentUserInfo(user, false),
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	data, err := decodePayload(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	data = Normalize(data)

	payload := loginPayload{
		Email:    stringField(data, "email"),
		Password: stringField(data, "password"),
		Role:     stringField(data, "role"),
	}
	if fields := h.checkPayload(payload); len(fields) > 0 {
		h.logger.Warn("invalid login credentials", slog.Any("errors", fields))
		httpx.RespondError(w, httpx.Validation("Invalid credentials", fields))
		return
	}

	user, err := h.service.Login(r.Context(), Credentials(payload))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, httpx.Unexpected(errors.New("session not initialised")))
		return
	}
	if err := h.sessions.Establish(r.Context(), sess, strconv.FormatInt(user.ID, 10), user.Email); err != nil {
		h.logger.Error("error starting session during login", slog.Any("error", err))
		httpx.RespondError(w, httpx.Backend(fmt.Sprintf("Error starting session: %v", err), err))
		return
	}

	h.logger.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)))
	httpx.Success(w, http.StatusOK, WelcomeMessage(user.Name, string(user.Role)), nil)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if !sess.Authenticated() {
		httpx.RespondError(w, httpx.Unauthenticated())
		return
	}

	userID := sess.User()
	if err := h.sessions.Destroy(r.Context(), sess); err != nil {
		h.logger.Error("error closing session during logout", slog.Any("error", err))
		httpx.RespondError(w, httpx.Backend(fmt.Sprintf("Error closing session: %v", err), err))
		return
	}

	h.logger.Info("user logged out", slog.String("user_id", userID))
	httpx.Success(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *Handler) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if !sess.Authenticated() {
		h.logger.Warn("unauthenticated access to user info")
		httpx.RespondError(w, httpx.Unauthenticated())
		return
	}

	user, err := h.service.Lookup(r.Context(), sess.Email())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	info := PresentUserInfo(user, true)
	h.logger.Info("user info retrieved",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email))
	httpx.Success(w, http.StatusOK, WelcomeMessage(info.Name, info.Role), httpx.Envelope{
		"user_info": info,
	})
}

// checkPayload runs struct validation and flattens the result into the
// field→messages map the envelope carries.
func (h *Handler) checkPayload(payload any) httpx.FieldErrors {
	err := h.validate.Struct(payload)
	if err == nil {
		return nil
	}
	fields := make(httpx.FieldErrors)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		fields["non_field_errors"] = []string{err.Error()}
		return fields
	}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], fieldMessage(fe))
	}
	return fields
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "oneof":
		return fmt.Sprintf("%q is not a valid choice.", fe.Value())
	default:
		return fmt.Sprintf("Invalid value for %s.", strings.ToLower(fe.Field()))
	}
}

func decodePayload(r *http.Request) (map[string]any, error) {
	var data map[string]any
	if err := httpx.DecodeJSON(r, &data); err != nil {
		return nil, httpx.Malformed(err)
	}
	return data, nil
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
