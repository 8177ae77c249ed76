// Package httpx renders the canonical response envelope shared by every
// endpoint and maps typed failures onto it.
package httpx

import (
	"encoding/json"
	"net/http"
)

// Envelope is the wire shape common to success and error responses.
type Envelope map[string]any

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Success writes a {success:true, message, ...extra} envelope.
func Success(w http.ResponseWriter, status int, message string, extra Envelope) {
	body := Envelope{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// Fail writes a {success:false, message, errors?} envelope. The errors key is
// omitted when detail is nil.
func Fail(w http.ResponseWriter, status int, message string, detail any) {
	body := Envelope{"success": false, "message": message}
	if detail != nil {
		body["errors"] = detail
	}
	JSON(w, status, body)
}

// DecodeJSON decodes the request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
