package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/service"
)

type fakeAuth struct {
	tokens map[string]*service.Principal
	err    error
}

func (f fakeAuth) CurrentUser(_ context.Context, raw string) (*service.Principal, error) {
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.tokens[raw]; ok {
		return p, nil
	}
	return nil, service.ErrUnauthenticated
}

func TestRequireAuth(t *testing.T) {
	alice := &service.Principal{User: &models.User{ID: 3, Name: "alice"}, TokenID: 11}
	a := fakeAuth{tokens: map[string]*service.Principal{"good": alice}}

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		require.Same(t, alice, PrincipalFrom(c))
		return c.String(http.StatusOK, UserFrom(c).Name)
	}, RequireAuth(a))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic Z29vZA==", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			require.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestRequireAuth_StoreFailureIsNot401(t *testing.T) {
	e := echo.New()
	e.GET("/me", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		RequireAuth(fakeAuth{err: errors.New("db down")}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer whatever")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPrincipalFrom_Empty(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	require.Nil(t, PrincipalFrom(c))
	require.Nil(t, UserFrom(c))
}
