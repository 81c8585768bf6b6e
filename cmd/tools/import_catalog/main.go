package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"laptop-request-catalog/pkg/importer"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	var (
		filePath    = flag.String("file", "", "Path to the .xlsx catalog")
		mappingPath = flag.String("mapping", os.Getenv("IMPORT_MAPPING_PATH"), "YAML column mapping (built-in mapping when empty)")
		table       = flag.String("table", envOr("LAPTOP_TABLE", "laptop_models"), "Target table")
		dryRun      = flag.Bool("dry-run", false, "Validate and roll back")
		maxErrors   = flag.Int("max-errors", 50, "Abort after this many row errors")
	)
	flag.Parse()

	if *filePath == "" {
		fmt.Println("Usage: import_catalog -file=catalog.xlsx [-mapping=configs/mapping/catalog.yaml] [-table=laptop_models] [-dry-run]")
		os.Exit(1)
	}

	// DATABASE_URL wins so seeding can target a different role than the app
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATA_SERVICE_URL")
	}
	if !strings.HasPrefix(dbURL, "postgres://") && !strings.HasPrefix(dbURL, "postgresql://") {
		log.Fatal("DATABASE_URL (or DATA_SERVICE_URL) must be a postgres:// URL")
	}

	ctx := context.Background()
	db, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("Failed to open Excel file: %v", err)
	}
	defer file.Close()

	fmt.Printf("Importing %s into %s (dry_run=%v)\n", *filePath, *table, *dryRun)
	fmt.Println(strings.Repeat("=", 60))

	summary, err := importer.ImportExcel(ctx, db, file, importer.ImportOptions{
		Table:       *table,
		MappingPath: *mappingPath,
		DryRun:      *dryRun,
		MaxErrors:   *maxErrors,
	})
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("IMPORT SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("Total inserted: %d\n", summary.Inserted)
	fmt.Printf("Total updated: %d\n", summary.Updated)
	fmt.Printf("Total skipped: %d\n", summary.Skipped)
	fmt.Printf("Total errors: %d\n", summary.Errors)
	fmt.Printf("Dry run: %v\n", summary.DryRun)

	for _, sheet := range summary.Sheets {
		fmt.Printf("  %s: inserted=%d, updated=%d, skipped=%d, errors=%d\n",
			sheet.Name, sheet.Inserted, sheet.Updated, sheet.Skipped, sheet.Errors)
		for _, sample := range sheet.Samples {
			fmt.Printf("      Row %d: %s\n", sample.Row, sample.Message)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
