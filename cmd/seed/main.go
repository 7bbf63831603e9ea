// Package main provides a CLI tool for applying the schema and seeding
// demo catalog data.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"

	"margem/internal/domain/catalog"
	"margem/internal/infrastructure/storage/postgres"
	"margem/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	migrationsDir := getEnv("MIGRATIONS_DIR", "migrations")
	if err := applyMigrations(ctx, pool, migrationsDir, log); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoCatalog(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo catalog", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

// applyMigrations executes every .sql file in the directory in
// lexical order. Statements are idempotent so reruns are safe.
func applyMigrations(ctx context.Context, pool *postgres.Pool, dir string, log *logger.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)

	for _, name := range files {
		sql, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		log.Infow("migration applied", "file", name)
	}

	return nil
}

func seedDemoCatalog(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	txManager := postgres.NewTxManager(pool)
	repo := postgres.NewCatalogRepo(txManager)

	demo := []catalog.Product{
		{Name: "Capa de Celular Transparente", SKU: strPtr("CAPA-001"), UnitCost: decimal.NewFromFloat(4.50), Stock: 120, MinStock: 20},
		{Name: "Película de Vidro 3D", SKU: strPtr("PEL-3D-01"), UnitCost: decimal.NewFromFloat(2.80), Stock: 200, MinStock: 40},
		{Name: "Cabo USB-C 2m", SKU: strPtr("CABO-USBC-2M"), UnitCost: decimal.NewFromFloat(7.90), Stock: 80, MinStock: 15},
		{Name: "Carregador Turbo 20W", SKU: strPtr("CARR-20W"), UnitCost: decimal.NewFromFloat(18.30), Stock: 45, MinStock: 10},
		{Name: "Fone Bluetooth TWS", SKU: strPtr("FONE-TWS"), UnitCost: decimal.NewFromFloat(32.00), Stock: 30, MinStock: 5},
	}

	for i := range demo {
		p := &demo[i]
		if _, err := repo.FindBySKU(ctx, *p.SKU); err == nil {
			log.Infow("product already exists", "sku", *p.SKU)
			continue
		}
		if err := repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product %s: %w", *p.SKU, err)
		}
		log.Infow("product created", "id", p.ID, "sku", *p.SKU)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func strPtr(s string) *string { return &s }
