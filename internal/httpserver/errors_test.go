package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog_api/internal/validate"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
		msg    string
	}{
		{"validation", validate.Field("title", "This field is required."), 422, KindValidation, "The given data was invalid."},
		{"wrapped validation", fmt.Errorf("create: %w", validate.Field("x", "y")), 422, KindValidation, "The given data was invalid."},
		{"unauthenticated", echo.NewHTTPError(401, "Unauthenticated."), 401, KindUnauthenticated, "Unauthenticated."},
		{"forbidden", echo.NewHTTPError(403, "This action is unauthorized."), 403, KindForbidden, "This action is unauthorized."},
		{"route not found", echo.ErrNotFound, 404, KindNotFound, "Not Found"},
		{"internal http error", echo.NewHTTPError(500, "db password is hunter2"), 500, KindInternal, "Server Error."},
		{"plain error", errors.New("boom"), 500, KindInternal, "Server Error."},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			resp, status := errorResponse(tt.err)
			require.Equal(t, tt.status, status)
			require.Equal(t, tt.kind, resp.Kind)
			require.Equal(t, tt.msg, resp.Message)
		})
	}
}

func TestErrorHandler_WritesEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	ErrorHandler(validate.Field("email", "Must be a valid email address."), c)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.JSONEq(t, `{"kind":"validation_failed","message":"The given data was invalid.","errors":{"email":"Must be a valid email address."}}`, rec.Body.String())
}

func TestBindError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"stock": "many"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	var body struct {
		Stock *int `json:"stock"`
	}
	err := bindError(c.Bind(&body))

	var ve *validate.Error
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "Must be an integer.", ve.Errors["stock"])
}
