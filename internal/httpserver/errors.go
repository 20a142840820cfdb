package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/service"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

const (
	KindValidation      = "validation_failed"
	KindUnauthenticated = "unauthenticated"
	KindForbidden       = "forbidden"
	KindNotFound        = "not_found"
	KindInternal        = "internal"
)

type ErrorResponse struct {
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func kindFor(status int) string {
	switch status {
	case http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindUnauthenticated
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusRequestEntityTooLarge:
		return "payload_too_large"
	}
	if status >= 500 {
		return KindInternal
	}
	return "bad_request"
}

// ErrorHandler renders every error as an ErrorResponse. 5xx causes are
// reported to Sentry when a hub is attached and never reach the client.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	resp, status := errorResponse(err)

	if status >= 500 {
		if hub := sentryecho.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(status)
	} else {
		werr = c.JSON(status, resp)
	}
	if werr != nil {
		logging.FromContext(c.Request().Context()).Error("write_error_response_failed", "error", werr)
	}
}

func errorResponse(err error) (ErrorResponse, int) {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return ErrorResponse{Kind: KindValidation, Message: "The given data was invalid.", Errors: ve.Errors}, http.StatusUnprocessableEntity
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		if errors.As(he.Internal, &ve) {
			return ErrorResponse{Kind: KindValidation, Message: "The given data was invalid.", Errors: ve.Errors}, http.StatusUnprocessableEntity
		}
		status := he.Code
		msg := http.StatusText(status)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		if status >= 500 {
			msg = "Server Error."
		}
		return ErrorResponse{Kind: kindFor(status), Message: msg}, status
	}

	return ErrorResponse{Kind: KindInternal, Message: "Server Error."}, http.StatusInternalServerError
}

// serviceError maps service sentinels onto HTTP errors and logs the failure
// as event with the given status.
func serviceError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "reason", "product not found")
		return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", http.StatusForbidden, "reason", "policy denied")
		return echo.NewHTTPError(http.StatusForbidden, "This action is unauthorized.")
	case errors.Is(err, service.ErrUnauthenticated):
		l.Warn(event, "status", http.StatusUnauthorized, "reason", "unauthenticated")
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
	case validate.IsError(err):
		l.Warn(event, "status", http.StatusUnprocessableEntity, "reason", "validation failed", "error", err)
		return err
	default:
		l.Error(event, "status", http.StatusInternalServerError, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
	}
}

// bindError turns a Bind failure into a field-level validation error.
func bindError(err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		return validate.Field(ute.Field, typeMessage(ute.Type))
	}
	return validate.Field("body", "The request body is not valid JSON.")
}

func typeMessage(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "Invalid value."
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "Must be an integer."
	case reflect.Float32, reflect.Float64:
		return "Must be a number."
	case reflect.String:
		return "Must be a string."
	default:
		return fmt.Sprintf("Must be of type %s.", t.Kind())
	}
}
