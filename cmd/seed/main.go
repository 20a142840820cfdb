// Command seed creates or updates a user and optionally inserts demo products.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skotchmaster/catalog_api/internal/config"
	"github.com/Skotchmaster/catalog_api/internal/db"
	"github.com/Skotchmaster/catalog_api/internal/hash"
	"github.com/Skotchmaster/catalog_api/internal/logging"
	"github.com/Skotchmaster/catalog_api/internal/models"
	"github.com/Skotchmaster/catalog_api/internal/repo"
	"github.com/Skotchmaster/catalog_api/internal/transport"
)

var categories = []string{
	"beauty", "electronics", "furniture", "groceries",
	"home-decoration", "fragrances", "laptops", "smartphones",
}

var adjectives = []string{"Classic", "Compact", "Deluxe", "Eco", "Smart", "Ultra", "Vintage", "Wireless"}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("notice: no .env loaded: %v", err)
	}

	email := flag.String("email", "", "user email (required)")
	name := flag.String("name", "", "display name (defaults to the email)")
	password := flag.String("password", "", "plaintext password (required)")
	role := flag.String("role", string(models.RoleUser), "admin or user")
	products := flag.Int("products", 0, "demo products to create for the user")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}
	if !models.Role(*role).Valid() {
		log.Printf("invalid -role %q: want admin or user", *role)
		os.Exit(2)
	}
	if *name == "" {
		*name = *email
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	logger := logging.New(cfg.LogLevel).With("cmd", "seed")

	if err := seed(cfg, logger, *name, *email, *password, models.Role(*role), *products); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func seed(cfg config.Config, logger *slog.Logger, name, email, password string, role models.Role, products int) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db close error", "error", err)
		}
	}()
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("db migrate: %w", err)
	}

	pw, err := hash.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	r := repo.New(gdb)
	user, err := r.UpsertUser(ctx, &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pw,
		Role:         role,
	})
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	logger.Info("user_seeded", "user_id", user.ID, "email", user.Email, "role", user.Role)

	for i := 0; i < products; i++ {
		p := demoProduct(user.ID)
		if err := r.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
	}
	if products > 0 {
		logger.Info("products_seeded", "count", products, "created_by", user.ID)
	}
	return nil
}

func demoProduct(owner uint) models.Product {
	category := categories[rand.IntN(len(categories))]
	title := fmt.Sprintf("%s %s item %d", adjectives[rand.IntN(len(adjectives))], category, rand.IntN(10000))
	desc := fmt.Sprintf("Demo %s product.", category)

	p := models.Product{
		Title:       title,
		Description: &desc,
		Category:    category,
		Price:       transport.Round2(1 + rand.Float64()*999),
		Stock:       rand.IntN(101),
		CreatedBy:   owner,
	}
	if rand.IntN(2) == 0 {
		d := transport.Round2(rand.Float64() * 30)
		p.DiscountPercentage = &d
	}
	rating := transport.Round2(rand.Float64() * 5)
	p.Rating = &rating
	return p
}
