package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	Name         string    `gorm:"size:255;not null"               json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"   json:"email"`
	PasswordHash string    `gorm:"not null"                        json:"-"`
	Role         Role      `gorm:"size:16;not null;default:user"   json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// AuthToken is one login session. Only the sha256 of the bearer string is kept.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey"                json:"id"`
	UserID     uint       `gorm:"index;not null"            json:"user_id"`
	User       *User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Name       string     `gorm:"size:64;not null"          json:"name"`
	JTI        string     `gorm:"size:36;uniqueIndex;not null" json:"jti"`
	TokenHash  string     `gorm:"size:64;uniqueIndex;not null" json:"-"`
	LastUsedAt *time.Time `json:"last_used_at"`
	ExpiresAt  time.Time  `gorm:"not null"                  json:"expires_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

type Product struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement"    json:"id"`
	Title              string         `gorm:"size:255;not null"           json:"title"`
	Description        *string        `gorm:"type:text"                   json:"description"`
	Category           string         `gorm:"size:255;not null;index"     json:"category"`
	Price              float64        `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPercentage *float64       `gorm:"type:decimal(5,2)"           json:"discount_percentage"`
	Rating             *float64       `gorm:"type:decimal(3,2)"           json:"rating"`
	Stock              int            `gorm:"not null;default:0"          json:"stock"`
	ThumbnailPath      *string        `gorm:"size:255"                    json:"thumbnail_path"`
	CreatedBy          uint           `gorm:"index;not null"              json:"created_by"`
	Creator            *User          `gorm:"foreignKey:CreatedBy"        json:"creator,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index"                       json:"-"`
}

// OwnedBy reports whether userID created the product.
func (p *Product) OwnedBy(userID uint) bool {
	return p != nil && p.CreatedBy == userID
}

func (p *Product) Trashed() bool {
	return p != nil && p.DeletedAt.Valid
}
