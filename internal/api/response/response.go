// internal/api/response/response.go
package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rsinha/backfolio/internal/core"
)

// ErrorBody is the error response format.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes a JSON response with the given status and body.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error writes an error response, mapping known error codes to HTTP status.
func Error(w http.ResponseWriter, err error) {
	message := "an internal error occurred"

	var coreErr *core.Error
	if errors.As(err, &coreErr) {
		message = coreErr.Message
	}

	JSON(w, StatusFor(err), ErrorBody{Error: message})
}

// StatusFor maps an error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrNoMatch),
		errors.Is(err, core.ErrNoPriceData),
		errors.Is(err, core.ErrDegenerateRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrJobNotFound),
		errors.Is(err, core.ErrArtifactNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
