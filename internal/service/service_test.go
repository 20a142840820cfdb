package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/catalog_api/internal/db/dbtest"
	"github.com/Skotchmaster/catalog_api/internal/events/eventstest"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/repo"
	"github.com/Skotchmaster/catalog_api/internal/storage"
	"github.com/Skotchmaster/catalog_api/internal/validate"
)

type fixture struct {
	repo    *repo.GormRepo
	auth    *AuthService
	catalog *CatalogService
	store   *storage.Local
	events  *eventstest.Recorder

	admin, owner, other *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gdb := dbtest.Open(t)
	r := repo.New(gdb)
	store, err := storage.NewLocal(t.TempDir(), "http://localhost:8080/storage")
	require.NoError(t, err)
	rec := &eventstest.Recorder{}

	return &fixture{
		repo: r,
		auth: &AuthService{
			Repo:     r,
			Secret:   []byte("test-secret"),
			TokenTTL: time.Hour,
			Events:   rec,
		},
		catalog: &CatalogService{
			Repo:      r,
			Storage:   store,
			Events:    rec,
			Validator: validate.New(),
		},
		store:  store,
		events: rec,
		admin:  dbtest.CreateUser(t, gdb, "admin@example.com", models.RoleAdmin),
		owner:  dbtest.CreateUser(t, gdb, "owner@example.com", models.RoleUser),
		other:  dbtest.CreateUser(t, gdb, "other@example.com", models.RoleUser),
	}
}

func ptr[T any](v T) *T { return &v }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}
