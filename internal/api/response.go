package api

import (
	"encoding/json"
	"net/http"

	"github.com/zapponejosh/inzalo-api/internal/validate"
)

// Response represents a standard API response.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// ErrorInfo contains error details.
type ErrorInfo struct {
	Message string                `json:"message"`
	Code    string                `json:"code,omitempty"`
	Fields  []validate.FieldError `json:"fields,omitempty"`
}

// Error codes returned in ErrorInfo.Code.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeInvalidDate  = "INVALID_DATE"
	CodeInvalidIndex = "INVALID_INDEX"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeRateLimited  = "TOO_MANY_REQUESTS"
	CodeInternal     = "INTERNAL_ERROR"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteCreated writes a 201 response.
func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, Response{Success: true, Data: data})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, status int, message, code string) error {
	return WriteJSON(w, status, Response{
		Success: false,
		Message: message,
		Error:   &ErrorInfo{Message: message, Code: code},
	})
}

// WriteValidationError writes a 400 listing each invalid field.
func WriteValidationError(w http.ResponseWriter, verr *validate.Error) error {
	return WriteJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Message: "Validation failed",
		Error: &ErrorInfo{
			Message: "Validation failed",
			Code:    CodeValidation,
			Fields:  verr.Fields,
		},
	})
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusBadRequest, message, CodeBadRequest)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusInternalServerError, message, CodeInternal)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) error {
	return WriteError(w, http.StatusForbidden, message, CodeForbidden)
}
