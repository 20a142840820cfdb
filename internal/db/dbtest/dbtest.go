// Package dbtest opens migrated databases for tests.
package dbtest

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/catalog_api/internal/db"
	"github.com/Skotchmaster/catalog_api/internal/hash"
	"github.com/Skotchmaster/catalog_api/internal/models"
)

const Password = "password"

// Open returns a fresh in-memory sqlite database, or the postgres database
// named by CATALOG_TEST_DATABASE_URL with its tables truncated.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	driver, dsn := "sqlite", ":memory:"
	if url := os.Getenv("CATALOG_TEST_DATABASE_URL"); url != "" {
		driver, dsn = "postgres", url
	}

	gdb, err := db.Open(context.Background(), driver, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })

	require.NoError(t, db.Migrate(gdb))
	if driver == "postgres" {
		require.NoError(t, gdb.Exec("TRUNCATE TABLE auth_tokens, products, users RESTART IDENTITY CASCADE").Error)
	}
	return gdb
}

// CreateUser inserts a user whose password is Password.
func CreateUser(t testing.TB, gdb *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	pw, err := hash.HashPassword(Password)
	require.NoError(t, err)

	u := &models.User{Name: email, Email: email, PasswordHash: pw, Role: role}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

// CreateProduct inserts p owned by owner, filling required fields left empty.
func CreateProduct(t testing.TB, gdb *gorm.DB, owner *models.User, p models.Product) *models.Product {
	t.Helper()

	if p.Title == "" {
		p.Title = "Product"
	}
	if p.Category == "" {
		p.Category = "misc"
	}
	p.CreatedBy = owner.ID
	require.NoError(t, gdb.Create(&p).Error)
	return &p
}
