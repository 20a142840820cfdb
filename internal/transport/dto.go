package transport

import (
	"strings"

	"github.com/Skotchmaster/catalog_api/internal/models"
)

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
}

// ProductRequest is the PUT/POST body: every field is written, absent
// optional fields become null.
type ProductRequest struct {
	Title              *string  `json:"title"               validate:"required,min=1,max=255"`
	Description        *string  `json:"description"`
	Category           *string  `json:"category"            validate:"required,min=1,max=255"`
	Price              *float64 `json:"price"               validate:"required,gte=0,lte=99999999.99"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitnil,gte=0,lte=100"`
	Rating             *float64 `json:"rating"              validate:"omitnil,gte=0,lte=5"`
	Stock              *int     `json:"stock"               validate:"required,gte=0"`
}

// PatchProductRequest changes only the fields present in the body.
type PatchProductRequest struct {
	Title              *string  `json:"title"               validate:"omitnil,min=1,max=255"`
	Description        *string  `json:"description"`
	Category           *string  `json:"category"            validate:"omitnil,min=1,max=255"`
	Price              *float64 `json:"price"               validate:"omitnil,gte=0,lte=99999999.99"`
	DiscountPercentage *float64 `json:"discount_percentage" validate:"omitnil,gte=0,lte=100"`
	Rating             *float64 `json:"rating"              validate:"omitnil,gte=0,lte=5"`
	Stock              *int     `json:"stock"               validate:"omitnil,gte=0"`
}

func (r *ProductRequest) Normalize() {
	r.Title = trimmed(r.Title)
	r.Category = trimmed(r.Category)
	r.Description = nullIfBlank(r.Description)
}

func (r *PatchProductRequest) Normalize() {
	r.Title = trimmed(r.Title)
	r.Category = trimmed(r.Category)
	r.Description = nullIfBlank(r.Description)
}

// Apply overwrites every mutable field of p. Call after validation.
func (r *ProductRequest) Apply(p *models.Product) {
	p.Title = *r.Title
	p.Description = r.Description
	p.Category = *r.Category
	p.Price = Round2(*r.Price)
	p.DiscountPercentage = round2Ptr(r.DiscountPercentage)
	p.Rating = round2Ptr(r.Rating)
	p.Stock = *r.Stock
}

func (r *PatchProductRequest) Apply(p *models.Product) {
	if r.Title != nil {
		p.Title = *r.Title
	}
	if r.Description != nil {
		p.Description = r.Description
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Price != nil {
		p.Price = Round2(*r.Price)
	}
	if r.DiscountPercentage != nil {
		p.DiscountPercentage = round2Ptr(r.DiscountPercentage)
	}
	if r.Rating != nil {
		p.Rating = round2Ptr(r.Rating)
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func nullIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
