package auth

import (
	"context"
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/service"
)

const ContextKey = "user"

// Authenticator resolves a raw bearer token to its principal.
type Authenticator interface {
	CurrentUser(ctx context.Context, raw string) (*service.Principal, error)
}

// RequireAuth rejects requests without a valid, unrevoked bearer token with
// 401 and stores the *service.Principal under ContextKey.
func RequireAuth(a Authenticator) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  ContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, raw string) (interface{}, error) {
			return a.CurrentUser(c.Request().Context(), raw)
		},
		SuccessHandler: func(c echo.Context) {
			if p := PrincipalFrom(c); p != nil {
				ctx := c.Request().Context()
				l := logging.FromContext(ctx).With("user_id", p.User.ID)
				c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
			}
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if errors.Is(err, service.ErrUnauthenticated) ||
				errors.Is(err, echojwt.ErrJWTMissing) ||
				errors.As(err, new(*echojwt.TokenExtractionError)) {
				logging.FromContext(c.Request().Context()).Warn("auth_failed",
					"status", http.StatusUnauthorized, "reason", "missing or invalid bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthenticated.")
			}
			return err
		},
	})
}

func PrincipalFrom(c echo.Context) *service.Principal {
	p, _ := c.Get(ContextKey).(*service.Principal)
	return p
}

func UserFrom(c echo.Context) *models.User {
	if p := PrincipalFrom(c); p != nil {
		return p.User
	}
	return nil
}
