package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/events"
	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/policy"
	"github.com/Skotchmaster/catalog_api/internal/query"
	"github.com/Skotchmaster/catalog_api/internal/repo"
	"github.com/Skotchmaster/catalog_api/internal/storage"
	"github.com/Skotchmaster/catalog_api/internal/transport"
	"github.com/Skotchmaster/catalog_api/internal/util"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

// CatalogService runs every product operation as load, authorize, validate,
// then mutate, so a denied or invalid request never touches the store.
type CatalogService struct {
	Repo      *repo.GormRepo
	Storage   storage.Storage
	Events    events.Publisher
	Validator *validate.Validator
}

type ProductPage struct {
	Items    []models.Product
	Total    int64
	Page     int
	PerPage  int
	LastPage int
	From     *int
	To       *int
}

func (s *CatalogService) List(ctx context.Context, user *models.User, q query.ProductQuery) (*ProductPage, error) {
	if err := policy.Authorize(user, policy.ActionViewAny, nil); err != nil {
		return nil, err
	}
	if q.Filters.Trashed != "" {
		if err := policy.Authorize(user, policy.ActionViewTrashed, nil); err != nil {
			return nil, err
		}
	}

	total, items, err := s.Repo.ListProducts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	from, to := util.Bounds(q.Page, q.PerPage, len(items))
	return &ProductPage{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PerPage:  q.PerPage,
		LastPage: util.LastPage(total, q.PerPage),
		From:     from,
		To:       to,
	}, nil
}

func (s *CatalogService) Get(ctx context.Context, user *models.User, id uint, includeCreator bool) (*models.Product, error) {
	prod, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, policy.ActionView, prod); err != nil {
		return nil, err
	}
	if includeCreator {
		if err := s.Repo.LoadCreator(ctx, prod); err != nil {
			return nil, fmt.Errorf("load creator: %w", err)
		}
	}
	return prod, nil
}

func (s *CatalogService) Create(ctx context.Context, user *models.User, req transport.ProductRequest) (*models.Product, error) {
	if err := policy.Authorize(user, policy.ActionCreate, nil); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := s.Validator.Validate(&req); err != nil {
		return nil, err
	}

	prod := &models.Product{CreatedBy: user.ID}
	req.Apply(prod)
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.ProductCreated, ActorID: user.ID, ProductID: prod.ID})
	return s.load(ctx, prod.ID, false)
}

// Replace is PUT: all fields are required or reset.
func (s *CatalogService) Replace(ctx context.Context, user *models.User, id uint, req transport.ProductRequest) (*models.Product, error) {
	prod, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, policy.ActionUpdate, prod); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := s.Validator.Validate(&req); err != nil {
		return nil, err
	}

	req.Apply(prod)
	return s.save(ctx, user, prod)
}

// Patch is PATCH: only fields present in req change.
func (s *CatalogService) Patch(ctx context.Context, user *models.User, id uint, req transport.PatchProductRequest) (*models.Product, error) {
	prod, err := s.load(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, policy.ActionUpdate, prod); err != nil {
		return nil, err
	}
	req.Normalize()
	if err := s.Validator.Validate(&req); err != nil {
		return nil, err
	}

	req.Apply(prod)
	return s.save(ctx, user, prod)
}

func (s *CatalogService) save(ctx context.Context, user *models.User, prod *models.Product) (*models.Product, error) {
	if err := s.Repo.UpdateProduct(ctx, prod); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	events.Emit(ctx, s.Events, events.Event{Type: events.ProductUpdated, ActorID: user.ID, ProductID: prod.ID})
	return s.load(ctx, prod.ID, false)
}

// Delete soft-deletes the product after removing its thumbnail file.
func (s *CatalogService) Delete(ctx context.Context, user *models.User, id uint) error {
	prod, err := s.load(ctx, id, false)
	if err != nil {
		return err
	}
	if err := policy.Authorize(user, policy.ActionDelete, prod); err != nil {
		return err
	}

	if err := s.removeThumbnail(ctx, prod); err != nil {
		return err
	}
	if err := s.Repo.SoftDeleteProduct(ctx, prod.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.ProductDeleted, ActorID: user.ID, ProductID: prod.ID})
	return nil
}

func (s *CatalogService) Restore(ctx context.Context, user *models.User, id uint) (*models.Product, error) {
	prod, err := s.load(ctx, id, user.IsAdmin())
	if err != nil {
		return nil, err
	}
	if err := policy.Authorize(user, policy.ActionRestore, prod); err != nil {
		return nil, err
	}
	if !prod.Trashed() {
		return prod, nil
	}

	if err := s.Repo.RestoreProduct(ctx, prod.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("restore product: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.ProductRestored, ActorID: user.ID, ProductID: prod.ID})
	return s.load(ctx, prod.ID, false)
}

func (s *CatalogService) ForceDelete(ctx context.Context, user *models.User, id uint) error {
	prod, err := s.load(ctx, id, user.IsAdmin())
	if err != nil {
		return err
	}
	if err := policy.Authorize(user, policy.ActionForceDelete, prod); err != nil {
		return err
	}

	if err := s.removeThumbnail(ctx, prod); err != nil {
		return err
	}
	if err := s.Repo.ForceDeleteProduct(ctx, prod.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("force delete product: %w", err)
	}

	events.Emit(ctx, s.Events, events.Event{Type: events.ProductForceDeleted, ActorID: user.ID, ProductID: prod.ID})
	return nil
}

func (s *CatalogService) ThumbnailURL(p *models.Product) *string {
	if p == nil || p.ThumbnailPath == nil || *p.ThumbnailPath == "" {
		return nil
	}
	u := s.Storage.URL(*p.ThumbnailPath)
	return &u
}

func (s *CatalogService) load(ctx context.Context, id uint, withTrashed bool) (*models.Product, error) {
	prod, err := s.Repo.GetProduct(ctx, id, withTrashed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return prod, nil
}

func (s *CatalogService) removeThumbnail(ctx context.Context, prod *models.Product) error {
	if prod.ThumbnailPath == nil || *prod.ThumbnailPath == "" {
		return nil
	}
	if err := s.Storage.Delete(ctx, *prod.ThumbnailPath); err != nil {
		logging.FromContext(ctx).Error("thumbnail_delete_failed",
			"product_id", prod.ID, "path", *prod.ThumbnailPath, "error", err)
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	return nil
}
