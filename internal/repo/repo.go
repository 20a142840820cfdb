package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/db"
)

type GormRepo struct {
	DB *gorm.DB
}

func New(gdb *gorm.DB) *GormRepo {
	return &GormRepo{DB: gdb}
}

func (r *GormRepo) Ping(ctx context.Context) error {
	return db.Ping(ctx, r.DB)
}
