package httpx

import (
	"encoding/json"
	"net/http"
)

// ActionResult is the body every mutation answers with. Handlers embed it in
// their response structs next to the operation payload.
type ActionResult struct {
	Success bool              `json:"success" example:"true"`
	Message string            `json:"message" example:"Product submitted for review"`
	Errors  map[string]string `json:"errors,omitempty"`
} // @name ActionResult

// JSON writes v as JSON with the given status code. Content-Type and
// X-Content-Type-Options headers are set automatically. Encoding errors are
// silently discarded. Use this for handler responses, not for streaming.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// JSONError writes a failed ActionResult carrying message.
func JSONError(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ActionResult{Message: message})
}

// JSONFail writes a failed ActionResult with a field-keyed error map.
func JSONFail(w http.ResponseWriter, status int, message string, fields map[string]string) {
	JSON(w, status, ActionResult{Message: message, Errors: fields})
}

// Succeeded returns a successful ActionResult with the given message.
func Succeeded(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}
