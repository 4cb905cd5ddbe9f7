package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user account is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrPackageNotFound is returned when a package is not found.
	ErrPackageNotFound = errors.New("package not found")
	// ErrAttachmentNotFound is returned when an attachment is not found.
	ErrAttachmentNotFound = errors.New("attachment not found")
	// ErrTrackingIDNotFound is returned when a login tracking identifier
	// resolves to no account.
	ErrTrackingIDNotFound = errors.New("tracking identifier not found")
	// ErrMissingTrackingID is returned when a user without an assigned
	// tracking identifier tries to register a package.
	ErrMissingTrackingID = errors.New("account has no tracking identifier")
	// ErrUnknownOwner is returned when a package references a tracking
	// identifier that belongs to no user account.
	ErrUnknownOwner = errors.New("owner tracking identifier does not exist")
	// ErrMissingRequiredFields is returned when a create request omits a
	// mandatory attribute; raised before any persistence call.
	ErrMissingRequiredFields = errors.New("missing required fields")
	// ErrInvalidStatus is returned for a status value outside the enum.
	ErrInvalidStatus = errors.New("invalid package status")
	// ErrInvalidTransition is returned when a status update violates the
	// shipment lifecycle.
	ErrInvalidTransition = errors.New("illegal status transition")
	// ErrInvalidTransport is returned for a transport type outside the enum.
	ErrInvalidTransport = errors.New("invalid transport type")
	// ErrDuplicateTrackingNumber is returned when a tracking number is taken.
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
	// ErrFileTooLarge is returned when an upload exceeds the size cap.
	ErrFileTooLarge = errors.New("file exceeds maximum size")
	// ErrFileTypeNotAllowed is returned for a disallowed content type.
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	// ErrForbidden is returned when the caller's role denies the action.
	ErrForbidden = errors.New("insufficient permissions")
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

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrPackageNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PACKAGE_NOT_FOUND")
	case errors.Is(err, ErrAttachmentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "ATTACHMENT_NOT_FOUND")
	case errors.Is(err, ErrTrackingIDNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TRACKING_ID_NOT_FOUND")
	case errors.Is(err, ErrMissingTrackingID):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_TRACKING_ID")
	case errors.Is(err, ErrUnknownOwner):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "UNKNOWN_OWNER")
	case errors.Is(err, ErrMissingRequiredFields):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "MISSING_REQUIRED_FIELDS")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrInvalidTransition):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TRANSITION")
	case errors.Is(err, ErrInvalidTransport):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_TRANSPORT")
	case errors.Is(err, ErrDuplicateTrackingNumber):
		return NewHTTPError(http.StatusConflict, err.Error(), "DUPLICATE_TRACKING_NUMBER")
	case errors.Is(err, ErrFileTooLarge):
		return NewHTTPError(http.StatusRequestEntityTooLarge, err.Error(), "FILE_TOO_LARGE")
	case errors.Is(err, ErrFileTypeNotAllowed):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FILE_TYPE_NOT_ALLOWED")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
