package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/query"
)

// columns a product update may touch; created_by and thumbnail_path are set elsewhere
var mutableProductColumns = []string{
	"title", "description", "category", "price",
	"discount_percentage", "rating", "stock",
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint, withTrashed bool) (*models.Product, error) {
	tx := r.DB.WithContext(ctx)
	if withTrashed {
		tx = tx.Unscoped()
	}
	var prod models.Product
	if err := tx.First(&prod, id).Error; err != nil {
		return nil, err
	}
	return &prod, nil
}

// UpdateProduct writes every mutable column of prod, nil pointers included.
func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	res := r.DB.WithContext(ctx).Model(prod).Select(mutableProductColumns).Updates(prod)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) SetThumbnailPath(ctx context.Context, id uint, path *string) error {
	res := r.DB.WithContext(ctx).Model(&models.Product{}).
		Where("id = ?", id).
		Update("thumbnail_path", path)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SoftDeleteProduct clears the thumbnail path and marks the row deleted.
func (r *GormRepo) SoftDeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("id = ?", id).
			Update("thumbnail_path", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Product{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) RestoreProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Unscoped().Model(&models.Product{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		Update("deleted_at", nil)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ForceDeleteProduct(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Unscoped().Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ListProducts(ctx context.Context, q query.ProductQuery) (int64, []models.Product, error) {
	base := func() *gorm.DB {
		return r.DB.WithContext(ctx).Model(&models.Product{}).Scopes(productFilters(q.Filters))
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, q.PerPage)
	tx := base().Scopes(productOrder(q.Sort)).Offset(q.Offset()).Limit(q.PerPage)
	if q.IncludeCreator {
		tx = tx.Preload("Creator", publicUserColumns)
	}
	if err := tx.Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

func (r *GormRepo) LoadCreator(ctx context.Context, prod *models.Product) error {
	var user models.User
	if err := publicUserColumns(r.DB.WithContext(ctx)).First(&user, prod.CreatedBy).Error; err != nil {
		return err
	}
	prod.Creator = &user
	return nil
}

func publicUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "role")
}

func productFilters(f query.Filters) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch f.Trashed {
		case query.TrashedWith:
			db = db.Unscoped()
		case query.TrashedOnly:
			db = db.Unscoped().Where("deleted_at IS NOT NULL")
		}
		if f.Category != nil {
			db = db.Where("category = ?", *f.Category)
		}
		if f.PriceMin != nil {
			db = db.Where("price >= ?", *f.PriceMin)
		}
		if f.PriceMax != nil {
			db = db.Where("price <= ?", *f.PriceMax)
		}
		if f.Search != nil {
			pattern := "%" + query.EscapeLike(strings.ToLower(*f.Search)) + "%"
			db = db.Where(
				`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`,
				pattern, pattern,
			)
		}
		return db
	}
}

func productOrder(s *query.Sort) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s != nil {
			db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Desc})
		}
		return db.Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}})
	}
}
