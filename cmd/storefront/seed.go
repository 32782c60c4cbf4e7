package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/storefront/internal/config"
	"github.com/gosuda/storefront/internal/domain"
)

type registrar interface {
	Register(ctx context.Context, username, email, password string) (*domain.User, error)
}

// sampleProducts is the catalog a fresh database starts with.
var sampleProducts = []domain.Product{ //nolint:gochecknoglobals // fixed seed data
	{Name: "Laptop", Description: "High-performance laptop with SSD", Price: 999.99, Stock: 10, Image: "laptop.jpg"},
	{Name: "Smartphone", Description: "Latest smartphone with high-res camera", Price: 699.99, Stock: 15, Image: "smartphone.jpg"},
	{Name: "Headphones", Description: "Noise-cancelling wireless headphones", Price: 199.99, Stock: 20, Image: "headphones.jpg"},
}

// seed creates the admin account and the sample catalog when no user exists
// yet. It does nothing on a database that already has users.
func seed(ctx context.Context, users domain.UserRepository, products domain.ProductRepository, reg registrar, cfg config.SeedConfig) error {
	count, err := users.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	admin, err := reg.Register(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed: admin: %w", err)
	}

	for i := range sampleProducts {
		p := sampleProducts[i]
		if err := products.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed: product %q: %w", p.Name, err)
		}
	}

	log.Info().
		Str("admin", admin.Username).
		Int("products", len(sampleProducts)).
		Msg("seeded empty database")
	return nil
}
