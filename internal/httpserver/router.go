package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog_api/internal/logging"
	authmw "github.com/Skotchmaster/catalog_api/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	Authenticator  authmw.Authenticator
	// Ready reports whether backing services answer; nil means always ready.
	Ready func(ctx context.Context) error
	// StorageDir is served under /storage when thumbnails live on local disk.
	StorageDir string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.StorageDir != "" {
		e.Static("/storage", d.StorageDir)
	}

	v1 := e.Group("/api/v1")
	v1.POST("/auth/login", d.AuthHandler.Login)

	authed := v1.Group("", authmw.RequireAuth(d.Authenticator))
	authed.POST("/auth/logout", d.AuthHandler.Logout)
	authed.GET("/auth/me", d.AuthHandler.Me)

	products := authed.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.POST("", d.CatalogHandler.CreateProduct)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.PUT("/:id", d.CatalogHandler.PutProduct)
	products.PATCH("/:id", d.CatalogHandler.PatchProduct)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct)
	products.POST("/:id/thumbnail", d.CatalogHandler.UploadThumbnail)
	products.POST("/:id/restore", d.CatalogHandler.RestoreProduct)
	products.DELETE("/:id/force", d.CatalogHandler.ForceDeleteProduct)
}
