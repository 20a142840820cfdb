package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

func (r *GormRepo) CreateToken(ctx context.Context, t *models.AuthToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) GetTokenByJTI(ctx context.Context, jti string) (*models.AuthToken, error) {
	var token models.AuthToken
	if err := r.DB.WithContext(ctx).Preload("User").Where("jti = ?", jti).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *GormRepo) TouchToken(ctx context.Context, id uint, at time.Time) error {
	return r.DB.WithContext(ctx).Model(&models.AuthToken{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *GormRepo) DeleteToken(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.AuthToken{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) CountTokens(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.AuthToken{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// PruneExpiredTokens removes a user's tokens that expired before now.
func (r *GormRepo) PruneExpiredTokens(ctx context.Context, userID uint, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND expires_at < ?", userID, now).
		Delete(&models.AuthToken{})
	return res.RowsAffected, res.Error
}
