package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/events"
	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/policy"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

const (
	ThumbnailField    = "thumbnail"
	MaxThumbnailBytes = 2 << 20
)

// sniffed mime type -> stored extension
var thumbnailTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// DetectThumbnail checks that data is a jpeg, png or webp image whose header
// decodes, and returns its mime type and file extension.
func DetectThumbnail(data []byte) (mime, ext string, err error) {
	if len(data) == 0 {
		return "", "", validate.Field(ThumbnailField, "This field is required.")
	}
	if len(data) > MaxThumbnailBytes {
		return "", "", validate.Field(ThumbnailField, "Must not be greater than 2048 kilobytes.")
	}

	mt := mimetype.Detect(data)
	for m, e := range thumbnailTypes {
		if mt.Is(m) {
			mime, ext = m, e
			break
		}
	}
	if ext == "" {
		return "", "", validate.Field(ThumbnailField, "Must be a file of type: jpeg, png, webp.")
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return "", "", validate.Field(ThumbnailField, "Must be an image.")
	}
	return mime, ext, nil
}

func ThumbnailKey(productID uint, ext string) string {
	return fmt.Sprintf("products/%d/thumbnail.%s", productID, ext)
}

// UploadThumbnail stores file as the product's thumbnail and removes the
// previous file. file may be nil when the request carried none.
func (s *CatalogService) UploadThumbnail(ctx context.Context, user *models.User, id uint, file io.Reader) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.upload_thumbnail", "product_id", id)

	prod, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, policy.ActionUpdate, prod); err != nil {
		return nil, err
	}

	if file == nil {
		return nil, validate.Field(ThumbnailField, "This field is required.")
	}
	data, err := io.ReadAll(io.LimitReader(file, MaxThumbnailBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	mime, ext, err := DetectThumbnail(data)
	if err != nil {
		return nil, err
	}

	key := ThumbnailKey(prod.ID, ext)
	var prior string
	if prod.ThumbnailPath != nil {
		prior = *prod.ThumbnailPath
	}

	// a prior file at another key goes first; the same key is overwritten in place.
	// The row is only written once the new file is stored.
	if prior != "" && prior != key {
		if err := s.Storage.Delete(ctx, prior); err != nil {
			return nil, fmt.Errorf("delete previous thumbnail: %w", err)
		}
	}

	stored, err := s.Storage.Put(ctx, key, bytes.NewReader(data), mime)
	if err != nil {
		l.Error("thumbnail_write_failed", "key", key, "error", err)
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	if err := s.Repo.SetThumbnailPath(ctx, prod.ID, &stored); err != nil {
		if delErr := s.Storage.Delete(ctx, stored); delErr != nil {
			l.Warn("thumbnail_cleanup_failed", "key", stored, "error", delErr)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("save thumbnail path: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{
		Type:      events.ProductThumbnailUploaded,
		ActorID:   user.ID,
		ProductID: prod.ID,
		Data:      map[string]any{"path": stored},
	})
	l.Info("thumbnail_uploaded", "path", stored, "bytes", len(data))

	return s.load(ctx, prod.ID, false)
}
