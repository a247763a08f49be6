package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized is returned when no usable bearer credential was presented.
	ErrUnauthorized = errors.New("not authenticated")
	// ErrInvalidCredentials is returned when username or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrForbidden is returned when the caller's role does not allow the operation.
	ErrForbidden = errors.New("not allowed for your role")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when creating or renaming a user onto an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrPasswordRequired is returned when a user is created without a password.
	ErrPasswordRequired = errors.New("password is required")

	// ErrProductNotFound is returned when a product is not found.
	ErrProductNotFound = errors.New("product not found")
	// ErrItemCodeExists is returned when a product code is already in the catalog.
	ErrItemCodeExists = errors.New("item code already exists")

	// ErrGatePassNotFound is returned when a gate pass is not found.
	ErrGatePassNotFound = errors.New("gate pass not found")
	// ErrStatusRequired is returned when a status update carries no status.
	ErrStatusRequired = errors.New("status is required")
	// ErrInvalidStatus is returned when a status update names an unknown status.
	ErrInvalidStatus = errors.New("status must be pending, approved, or rejected")
	// ErrSequenceExhausted is returned when a year has used all 9999 gate pass numbers.
	ErrSequenceExhausted = errors.New("gate pass number sequence exhausted for year")
	// ErrNumberContention is returned when concurrent creates kept taking the same number.
	ErrNumberContention = errors.New("could not allocate a gate pass number, please retry")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrUsernameTaken, http.StatusBadRequest, "USERNAME_EXISTS"},
	{ErrPasswordRequired, http.StatusBadRequest, "PASSWORD_REQUIRED"},
	{ErrProductNotFound, http.StatusNotFound, "PRODUCT_NOT_FOUND"},
	{ErrItemCodeExists, http.StatusBadRequest, "ITEM_CODE_EXISTS"},
	{ErrGatePassNotFound, http.StatusNotFound, "GATE_PASS_NOT_FOUND"},
	{ErrStatusRequired, http.StatusBadRequest, "STATUS_REQUIRED"},
	{ErrInvalidStatus, http.StatusBadRequest, "INVALID_STATUS"},
	{ErrSequenceExhausted, http.StatusConflict, "SEQUENCE_EXHAUSTED"},
	{ErrNumberContention, http.StatusConflict, "GP_NUMBER_CONFLICT"},
}

// MapErrorToHTTP maps domain errors, including wrapped ones, to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return NewHTTPError(ec.status, ec.err.Error(), ec.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}

// Is is errors.Is, re-exported so callers importing this package under its
// own name keep access to it.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
