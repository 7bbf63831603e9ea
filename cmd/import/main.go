// Package main provides a CLI tool for one-shot spreadsheet imports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"margem/internal/domain/importer"
	"margem/internal/infrastructure/storage/postgres"
	"margem/pkg/logger"
)

func main() {
	filePath := flag.String("file", "", "path to the .xlsx file to import")
	format := flag.String("format", "mercado-livre", "file format: mercado-livre or template")
	flag.Parse()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	if *filePath == "" {
		log.Fatal("-file is required")
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

	txManager := postgres.NewTxManager(pool)
	batchStore, err := postgres.NewImportBatchStore(txManager)
	if err != nil {
		log.Fatalw("failed to create batch store", "error", err)
	}

	service := importer.NewService(
		postgres.NewCatalogRepo(txManager),
		postgres.NewSalesRepo(txManager),
		batchStore,
		txManager,
	)

	var importFn importer.ImportFunc
	switch *format {
	case "mercado-livre":
		importFn = service.ImportMercadoLivre
	case "template":
		importFn = service.ImportTemplate
	default:
		log.Fatalw("unknown format", "format", *format)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalw("failed to open file", "path", *filePath, "error", err)
	}
	defer file.Close()

	summary, err := importFn(ctx, file, filepath.Base(*filePath))
	if err != nil {
		log.Fatalw("import failed", "error", err)
	}

	log.Infow("import completed",
		"batch_id", summary.BatchID,
		"imported", summary.Imported,
		"skipped_no_key", summary.SkippedNoKey,
		"skipped_unmatched", summary.SkippedUnmatched,
	)
}
