package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/db/dbtest"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/query"
)

func ptr[T any](v T) *T { return &v }

func newRepo(t *testing.T) (*GormRepo, *models.User) {
	t.Helper()
	gdb := dbtest.Open(t)
	admin := dbtest.CreateUser(t, gdb, "admin@example.com", models.RoleAdmin)
	return New(gdb), admin
}

func listIDs(items []models.Product) []uint {
	out := make([]uint, 0, len(items))
	for _, p := range items {
		out = append(out, p.ID)
	}
	return out
}

func TestUserLookupAndUpsert(t *testing.T) {
	r, admin := newRepo(t)
	ctx := context.Background()

	u, err := r.GetUserByEmail(ctx, "  ADMIN@example.com ")
	require.NoError(t, err)
	require.Equal(t, admin.ID, u.ID)

	_, err = r.GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	up, err := r.UpsertUser(ctx, &models.User{Name: "Renamed", Email: "admin@example.com", PasswordHash: "x", Role: models.RoleUser})
	require.NoError(t, err)
	require.Equal(t, admin.ID, up.ID)
	require.Equal(t, "Renamed", up.Name)
	require.Equal(t, models.RoleUser, up.Role)

	created, err := r.UpsertUser(ctx, &models.User{Name: "New", Email: "New@Example.com", PasswordHash: "x", Role: models.RoleUser})
	require.NoError(t, err)
	require.NotEqual(t, admin.ID, created.ID)
	require.Equal(t, "new@example.com", created.Email)
}

func TestTokens(t *testing.T) {
	r, admin := newRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	live := &models.AuthToken{UserID: admin.ID, Name: "api-token", JTI: "jti-live", TokenHash: "h1", ExpiresAt: now.Add(time.Hour)}
	old := &models.AuthToken{UserID: admin.ID, Name: "api-token", JTI: "jti-old", TokenHash: "h2", ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, r.CreateToken(ctx, live))
	require.NoError(t, r.CreateToken(ctx, old))

	got, err := r.GetTokenByJTI(ctx, "jti-live")
	require.NoError(t, err)
	require.NotNil(t, got.User)
	require.Equal(t, admin.Email, got.User.Email)
	require.Nil(t, got.LastUsedAt)

	require.NoError(t, r.TouchToken(ctx, live.ID, now))
	got, err = r.GetTokenByJTI(ctx, "jti-live")
	require.NoError(t, err)
	require.NotNil(t, got.LastUsedAt)

	pruned, err := r.PruneExpiredTokens(ctx, admin.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, pruned)

	require.NoError(t, r.DeleteToken(ctx, live.ID))
	require.ErrorIs(t, r.DeleteToken(ctx, live.ID), gorm.ErrRecordNotFound)

	n, err := r.CountTokens(ctx, admin.ID)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestProductLifecycle(t *testing.T) {
	r, admin := newRepo(t)
	ctx := context.Background()

	p := &models.Product{Title: "Lamp", Category: "home-decoration", Price: 19.99, Stock: 3, CreatedBy: admin.ID,
		Description: ptr("desk lamp"), Rating: ptr(4.5)}
	require.NoError(t, r.CreateProduct(ctx, p))
	require.NotZero(t, p.ID)

	p.Title = "Floor lamp"
	p.Description = nil
	p.Stock = 0
	require.NoError(t, r.UpdateProduct(ctx, p))

	got, err := r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Floor lamp", got.Title)
	assert.Nil(t, got.Description)
	assert.Equal(t, 0, got.Stock)
	assert.Equal(t, 4.5, *got.Rating)

	require.NoError(t, r.SetThumbnailPath(ctx, p.ID, ptr("products/1/thumbnail.png")))
	require.NoError(t, r.SoftDeleteProduct(ctx, p.ID))

	_, err = r.GetProduct(ctx, p.ID, false)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	trashed, err := r.GetProduct(ctx, p.ID, true)
	require.NoError(t, err)
	require.True(t, trashed.Trashed())
	require.Nil(t, trashed.ThumbnailPath)

	require.ErrorIs(t, r.SoftDeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)

	require.NoError(t, r.RestoreProduct(ctx, p.ID))
	require.ErrorIs(t, r.RestoreProduct(ctx, p.ID), gorm.ErrRecordNotFound)
	_, err = r.GetProduct(ctx, p.ID, false)
	require.NoError(t, err)

	require.NoError(t, r.ForceDeleteProduct(ctx, p.ID))
	_, err = r.GetProduct(ctx, p.ID, true)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	require.ErrorIs(t, r.ForceDeleteProduct(ctx, p.ID), gorm.ErrRecordNotFound)
}

func TestListProducts(t *testing.T) {
	r, admin := newRepo(t)
	ctx := context.Background()
	gdb := r.DB

	a := dbtest.CreateProduct(t, gdb, admin, models.Product{Title: "Gaming Laptop", Category: "laptops", Price: 1500, Stock: 2})
	b := dbtest.CreateProduct(t, gdb, admin, models.Product{Title: "Phone", Category: "smartphones", Price: 700, Stock: 9,
		Description: ptr("Works like a LAPTOP in your pocket")})
	c := dbtest.CreateProduct(t, gdb, admin, models.Product{Title: "Office laptop", Category: "laptops", Price: 500, Stock: 5})
	d := dbtest.CreateProduct(t, gdb, admin, models.Product{Title: "100% cotton", Category: "misc", Price: 5, Stock: 1})
	e := dbtest.CreateProduct(t, gdb, admin, models.Product{Title: "Old laptop", Category: "laptops", Price: 50, Stock: 0})
	require.NoError(t, r.SoftDeleteProduct(ctx, e.ID))

	list := func(mod func(*query.ProductQuery)) (int64, []uint) {
		t.Helper()
		q := query.Default()
		q.PerPage = 100
		mod(&q)
		total, items, err := r.ListProducts(ctx, q)
		require.NoError(t, err)
		return total, listIDs(items)
	}

	total, ids := list(func(q *query.ProductQuery) {})
	require.EqualValues(t, 4, total)
	require.Equal(t, []uint{a.ID, b.ID, c.ID, d.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) { q.Filters.Category = ptr("laptops") })
	require.Equal(t, []uint{a.ID, c.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) { q.Filters.Search = ptr("laptop") })
	require.Equal(t, []uint{a.ID, b.ID, c.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) {
		q.Filters.Search = ptr("laptop")
		q.Filters.Category = ptr("laptops")
		q.Filters.PriceMax = ptr(500.0)
	})
	require.Equal(t, []uint{c.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) { q.Filters.Search = ptr("%") })
	require.Equal(t, []uint{d.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) {
		q.Filters.PriceMin = ptr(500.0)
		q.Filters.PriceMax = ptr(700.0)
	})
	require.Equal(t, []uint{b.ID, c.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) { q.Sort = &query.Sort{Column: "price"} })
	require.Equal(t, []uint{d.ID, c.ID, b.ID, a.ID}, ids)

	_, ids = list(func(q *query.ProductQuery) { q.Sort = &query.Sort{Column: "stock", Desc: true} })
	require.Equal(t, []uint{b.ID, c.ID, a.ID, d.ID}, ids)

	total, ids = list(func(q *query.ProductQuery) { q.Filters.Trashed = query.TrashedWith })
	require.EqualValues(t, 5, total)
	require.Contains(t, ids, e.ID)

	_, ids = list(func(q *query.ProductQuery) { q.Filters.Trashed = query.TrashedOnly })
	require.Equal(t, []uint{e.ID}, ids)
}

func TestListProducts_PagesAndCreator(t *testing.T) {
	r, admin := newRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		dbtest.CreateProduct(t, r.DB, admin, models.Product{Price: float64(10 - i)})
	}

	q := query.Default()
	q.PerPage = 2
	q.Page = 3
	q.IncludeCreator = true
	q.Sort = &query.Sort{Column: "price"}

	total, items, err := r.ListProducts(ctx, q)
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
	require.Len(t, items, 1)
	require.Equal(t, 10.0, items[0].Price)
	require.NotNil(t, items[0].Creator)
	require.Equal(t, admin.Email, items[0].Creator.Email)
	require.Empty(t, items[0].Creator.PasswordHash)
}

func TestLoadCreator(t *testing.T) {
	r, admin := newRepo(t)
	p := dbtest.CreateProduct(t, r.DB, admin, models.Product{})

	require.NoError(t, r.LoadCreator(context.Background(), p))
	require.Equal(t, admin.ID, p.Creator.ID)
	require.Empty(t, p.Creator.PasswordHash)
}
