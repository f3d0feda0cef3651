package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leveltrack/leveltrack/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidScore        = "INVALID_SCORE"
	CodePlayerNotFound      = "PLAYER_NOT_FOUND"
	CodeLevelNotFound       = "LEVEL_NOT_FOUND"
	CodePrizeNotFound       = "PRIZE_NOT_FOUND"
	CodeProgressNotFound    = "PROGRESS_NOT_FOUND"
	CodeLevelNotStarted     = "LEVEL_NOT_STARTED"
	CodePrizeAlreadyGranted = "PRIZE_ALREADY_GRANTED"
	CodeLevelExists         = "LEVEL_EXISTS"
	CodePrizeExists         = "PRIZE_EXISTS"
	CodeInternalError       = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var notStarted *model.NotStartedError
	if errors.As(err, &notStarted) {
		return &httpError{http.StatusConflict, APIError{CodeLevelNotStarted, notStarted.Error()}}
	}

	var alreadyGranted *model.AlreadyGrantedError
	if errors.As(err, &alreadyGranted) {
		return &httpError{http.StatusConflict, APIError{CodePrizeAlreadyGranted, alreadyGranted.Error()}}
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrLevelNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeLevelNotFound, "Level not found"}}
	case errors.Is(err, model.ErrPrizeNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePrizeNotFound, "Prize not found"}}
	case errors.Is(err, model.ErrProgressNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeProgressNotFound, "Level progress not found"}}
	case errors.Is(err, model.ErrLevelExists):
		return &httpError{http.StatusConflict, APIError{CodeLevelExists, "Level already exists"}}
	case errors.Is(err, model.ErrPrizeExists):
		return &httpError{http.StatusConflict, APIError{CodePrizeExists, "Prize already exists"}}
	case errors.Is(err, model.ErrNegativeScore):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidScore, "Score must be non-negative"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
