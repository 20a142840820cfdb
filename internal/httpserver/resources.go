package httpserver

import (
	"time"

	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/service"
)

type UserResource struct {
	ID    uint        `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

type ProductResource struct {
	ID                 uint          `json:"id"`
	Title              string        `json:"title"`
	Description        *string       `json:"description"`
	Category           string        `json:"category"`
	Price              float64       `json:"price"`
	DiscountPercentage *float64      `json:"discount_percentage"`
	Rating             *float64      `json:"rating"`
	Stock              int           `json:"stock"`
	Thumbnail          *string       `json:"thumbnail"`
	CreatedAt          string        `json:"created_at"`
	UpdatedAt          string        `json:"updated_at"`
	Creator            *UserResource `json:"creator,omitempty"`
}

type PageMeta struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type listEnvelope struct {
	Data []ProductResource `json:"data"`
	Meta PageMeta          `json:"meta"`
}

type messageEnvelope struct {
	Message string `json:"message"`
}

type loginData struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      UserResource `json:"user"`
}

func newUserResource(u *models.User) UserResource {
	return UserResource{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (h *CatalogHTTP) productResource(p *models.Product) ProductResource {
	res := ProductResource{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Category:           p.Category,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		Rating:             p.Rating,
		Stock:              p.Stock,
		Thumbnail:          h.Svc.ThumbnailURL(p),
		CreatedAt:          isoTime(p.CreatedAt),
		UpdatedAt:          isoTime(p.UpdatedAt),
	}
	if p.Creator != nil {
		u := newUserResource(p.Creator)
		res.Creator = &u
	}
	return res
}

func (h *CatalogHTTP) pageResource(page *service.ProductPage) listEnvelope {
	items := make([]ProductResource, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, h.productResource(&page.Items[i]))
	}
	return listEnvelope{
		Data: items,
		Meta: PageMeta{
			Total:       page.Total,
			CurrentPage: page.Page,
			LastPage:    page.LastPage,
			PerPage:     page.PerPage,
			From:        page.From,
			To:          page.To,
		},
	}
}

func isoTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
