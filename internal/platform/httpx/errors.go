package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the closed set of failure categories the service can surface.
// Every component signals one of these; RespondError is the single place
// that turns a kind into a wire envelope.
type Kind int

const (
	// KindValidation covers missing, malformed or rejected input fields.
	KindValidation Kind = iota
	// KindAuthentication covers missing or invalid credentials/sessions.
	KindAuthentication
	// KindAuthorization covers authenticated callers lacking permission.
	KindAuthorization
	// KindMalformed covers request bodies that cannot be parsed at all.
	KindMalformed
	// KindMethod covers HTTP methods an endpoint does not support.
	KindMethod
	// KindNotFound covers unknown routes and missing resources.
	KindNotFound
	// KindMediaType covers request bodies in an unsupported content type.
	KindMediaType
	// KindRateLimited covers throttled requests.
	KindRateLimited
	// KindBackend covers store or session backend failures.
	KindBackend
	// KindUnexpected is the fallback for anything uncategorized.
	KindUnexpected
)

// FieldErrors maps a field name to its validation messages.
type FieldErrors map[string][]string

// Error is the tagged failure variant carried from components to the
// response boundary. Message and Status, when set, override the kind's
// defaults; Fields and Detail feed the envelope's errors key.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Fields  FieldErrors
	Detail  any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.text(), e.Err)
	}
	return e.text()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) text() string {
	if e.Message != "" {
		return e.Message
	}
	_, msg := e.Kind.defaults()
	return msg
}

// Validation builds a field-level validation failure. The message names the
// request context ("Invalid data" for signup, "Invalid credentials" for
// login); fields carries per-field detail.
func Validation(message string, fields FieldErrors) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// Unauthenticated signals missing or invalid credentials or session.
func Unauthenticated() *Error {
	return &Error{Kind: KindAuthentication}
}

// PermissionDenied signals an authorization failure with optional detail.
func PermissionDenied(detail any) *Error {
	return &Error{Kind: KindAuthorization, Detail: detail}
}

// Malformed signals an unparseable request body.
func Malformed(err error) *Error {
	return &Error{Kind: KindMalformed, Err: err}
}

// MethodNotAllowed signals an unsupported HTTP method on a known endpoint.
func MethodNotAllowed(method string) *Error {
	return &Error{
		Kind:    KindMethod,
		Message: fmt.Sprintf("Method '%s' not allowed on this endpoint", method),
	}
}

// NotFound signals an unknown route or missing resource.
func NotFound() *Error {
	return &Error{Kind: KindNotFound}
}

// UnsupportedMedia signals a request body in a content type the service
// does not accept.
func UnsupportedMedia() *Error {
	return &Error{Kind: KindMediaType}
}

// Throttled signals a rate-limited request. retryAfter is surfaced under
// errors.retry_after in whole seconds.
func Throttled(retryAfter time.Duration) *Error {
	return &Error{
		Kind:   KindRateLimited,
		Detail: Envelope{"retry_after": int(retryAfter.Seconds())},
	}
}

// Backend signals a store or session backend failure. The message, when
// non-empty, replaces the generic one on the wire.
func Backend(message string, err error) *Error {
	return &Error{Kind: KindBackend, Message: message, Err: err}
}

// Unexpected wraps an uncategorized fault.
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Err: err}
}

// defaults returns the status and message contract for the kind.
func (k Kind) defaults() (int, string) {
	switch k {
	case KindValidation:
		return http.StatusBadRequest, "Invalid input data"
	case KindAuthentication:
		return http.StatusUnauthorized, "Invalid or missing authentication credentials"
	case KindAuthorization:
		return http.StatusForbidden, "You do not have permission to perform this action"
	case KindMalformed:
		return http.StatusBadRequest, "Malformed request data"
	case KindMethod:
		return http.StatusMethodNotAllowed, "Method not allowed on this endpoint"
	case KindNotFound:
		return http.StatusNotFound, "The requested resource was not found"
	case KindMediaType:
		return http.StatusUnsupportedMediaType, "Unsupported media type"
	case KindRateLimited:
		return http.StatusTooManyRequests, "Request was throttled. Please try again later."
	case KindBackend:
		return http.StatusInternalServerError, "An error occurred"
	case KindUnexpected:
		return http.StatusInternalServerError, "An unexpected error occurred. Please contact support."
	}
	return http.StatusInternalServerError, "An unexpected error occurred. Please contact support."
}

// RespondError renders any failure as an error envelope. Errors that are not
// an *Error, and errors of KindUnexpected, fall through to the 500 contract
// so nothing escapes unmapped.
func RespondError(w http.ResponseWriter, err error) {
	var fail *Error
	if !errors.As(err, &fail) {
		fail = Unexpected(err)
	}

	status, message := fail.Kind.defaults()
	if fail.Status != 0 {
		status = fail.Status
	}
	if fail.Message != "" {
		message = fail.Message
	}

	var detail any
	switch fail.Kind {
	case KindValidation:
		if len(fail.Fields) > 0 {
			detail = fail.Fields
		}
	case KindAuthorization, KindRateLimited:
		detail = fail.Detail
	case KindUnexpected:
		cause := "unknown"
		if fail.Err != nil {
			cause = fail.Err.Error()
		}
		detail = Envelope{"error": cause}
	case KindAuthentication, KindMalformed, KindMethod, KindNotFound, KindMediaType, KindBackend:
		detail = nil
	}

	Fail(w, status, message, detail)
}
