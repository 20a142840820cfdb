package httpserver

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/catalog_api/internal/logging"
	authmw "github.com/Skotchmaster/catalog_api/internal/middleware/auth"
	"github.com/Skotchmaster/catalog_api/internal/query"
	"github.com/Skotchmaster/catalog_api/internal/service"
	"github.com/Skotchmaster/catalog_api/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// productID reads :id; anything but a positive integer is an unknown product.
func productID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusNotFound, "Product not found.")
	}
	return uint(id), nil
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	q, err := query.Parse(c.QueryParams())
	if err != nil {
		l.Warn("get_products_failed", "status", 422, "reason", "bad query", "error", err)
		return err
	}

	page, err := h.Svc.List(ctx, authmw.UserFrom(c), q)
	if err != nil {
		return serviceError(l, "get_products_failed", err)
	}

	return c.JSON(http.StatusOK, h.pageResource(page))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	include, err := query.IncludesCreator(c.QueryParams())
	if err != nil {
		return err
	}

	prod, err := h.Svc.Get(ctx, authmw.UserFrom(c), id, include)
	if err != nil {
		return serviceError(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, dataEnvelope{Data: h.productResource(prod)})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 422, "reason", "invalid body", "error", err)
		return bindError(err)
	}

	prod, err := h.Svc.Create(ctx, authmw.UserFrom(c), req)
	if err != nil {
		return serviceError(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, dataEnvelope{Data: h.productResource(prod)})
}

func (h *CatalogHTTP) PutProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.put_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_put_error", "status", 422, "reason", "invalid body", "error", err)
		return bindError(err)
	}

	prod, err := h.Svc.Replace(ctx, authmw.UserFrom(c), id, req)
	if err != nil {
		return serviceError(l, "product_put_error", err)
	}

	l.Info("put_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, dataEnvelope{Data: h.productResource(prod)})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 422, "reason", "invalid body", "error", err)
		return bindError(err)
	}

	prod, err := h.Svc.Patch(ctx, authmw.UserFrom(c), id, req)
	if err != nil {
		return serviceError(l, "product_patch_error", err)
	}

	l.Info("patch_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, dataEnvelope{Data: h.productResource(prod)})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.Delete(ctx, authmw.UserFrom(c), id); err != nil {
		return serviceError(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, messageEnvelope{Message: "Product deleted successfully"})
}

func (h *CatalogHTTP) RestoreProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.restore_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	prod, err := h.Svc.Restore(ctx, authmw.UserFrom(c), id)
	if err != nil {
		return serviceError(l, "product_restore_error", err)
	}

	l.Info("restore_product_success", "product_id", id)
	return c.JSON(http.StatusOK, dataEnvelope{Data: h.productResource(prod)})
}

func (h *CatalogHTTP) ForceDeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.force_delete_product")

	id, err := productID(c)
	if err != nil {
		return err
	}
	if err := h.Svc.ForceDelete(ctx, authmw.UserFrom(c), id); err != nil {
		return serviceError(l, "product_force_delete_error", err)
	}

	l.Info("force_delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, messageEnvelope{Message: "Product permanently deleted"})
}

func (h *CatalogHTTP) UploadThumbnail(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.upload_thumbnail")

	id, err := productID(c)
	if err != nil {
		return err
	}

	var file io.Reader
	if fh, err := c.FormFile(service.ThumbnailField); err == nil {
		f, err := fh.Open()
		if err != nil {
			l.Error("thumbnail_upload_error", "status", 500, "reason", "cannot open upload", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}
		defer f.Close()
		file = f
	}

	prod, err := h.Svc.UploadThumbnail(ctx, authmw.UserFrom(c), id, file)
	if err != nil {
		return serviceError(l, "thumbnail_upload_error", err)
	}

	return c.JSON(http.StatusOK, dataEnvelope{Data: h.productResource(prod)})
}
