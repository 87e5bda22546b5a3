package api

import (
	"fmt"
	"net/http"

	"github.com/vytor/chessduel/internal/errors"
	"github.com/vytor/chessduel/internal/logger"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleError centralizes error handling for HTTP responses
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())

	appErr, ok := errors.As(err)
	if !ok {
		appErr = errors.NewInternalError(err)
	}

	if appErr.Status >= 500 {
		log.Error("server error: %v", appErr)
	} else {
		log.Warn("client error: %v", appErr)
	}

	writeJSON(w, r, appErr.Status, errorBody{Error: errorDetail{Code: appErr.Code, Message: appErr.Message}})
}

func errNoRoute(r *http.Request) *errors.AppError {
	return errors.NewNotFoundError("route", fmt.Sprintf("%s %s", r.Method, r.URL.Path))
}

func errUnavailable(feature string) *errors.AppError {
	return errors.NewUnavailableError(feature + " is not configured")
}
