package dto

import (
	"net/http"
	"strings"
)

// Transport error codes. Domain errors keep their own codes
// (INVALID_FACTOR_TABLE, CREDIT_DECLINED, ...) in the response.
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeValidation is used when request binding or validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeRouteNotFound is used for unknown routes
	ErrCodeRouteNotFound = "ERR_ROUTE_NOT_FOUND"
	// ErrCodePayloadTooLarge is used when the body exceeds the configured limit
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRouteNotFound:   http.StatusNotFound,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	// Resource errors
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Pricing and credit rules -> 422 Unprocessable Entity
	"CREDIT_DECLINED":        http.StatusUnprocessableEntity,
	"NO_AUTHORIZATION":       http.StatusUnprocessableEntity,
	"MISSING_TIER_PRICE":     http.StatusUnprocessableEntity,
	"MISSING_OVERRIDE_PRICE": http.StatusUnprocessableEntity,
	"INVALID_STATE":          http.StatusUnprocessableEntity,
	"CREDIT_NOT_SUPPORTED":   http.StatusUnprocessableEntity,

	"FACTOR_STORE_UNAVAILABLE": http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code. Codes not
// in the table are 400 when they start with INVALID_ and 500 otherwise.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
