package httpserver

import (
	"log/slog"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	loggingmw "github.com/Skotchmaster/catalog_api/internal/middleware/logging"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

type Options struct {
	CORSOrigins []string
	// BodyLimit caps request bodies, e.g. "4M"; thumbnails above 2 MiB still
	// get a field error as long as they fit under it.
	BodyLimit string
	Sentry    bool
}

// New builds the echo instance with the middleware chain and routes.
func New(base *slog.Logger, opts Options, d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validate.New()
	e.HTTPErrorHandler = ErrorHandler

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if opts.Sentry {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(loggingmw.RequestLogger(base))

	cors := echomw.DefaultCORSConfig
	if len(opts.CORSOrigins) > 0 {
		cors.AllowOrigins = opts.CORSOrigins
	}
	e.Use(echomw.CORSWithConfig(cors))

	limit := opts.BodyLimit
	if limit == "" {
		limit = "4M"
	}
	e.Use(echomw.BodyLimit(limit))

	Register(e, d)
	return e
}
