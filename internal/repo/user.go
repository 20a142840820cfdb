package repo

import (
	"context"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpsertUser creates the user or, when the email exists, overwrites name,
// password hash and role.
func (r *GormRepo) UpsertUser(ctx context.Context, u *models.User) (*models.User, error) {
	u.Email = NormalizeEmail(u.Email)
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "password_hash", "role", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, err
	}
	return r.GetUserByEmail(ctx, u.Email)
}
