package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"table_ordering/internal/config"
	"table_ordering/internal/database"
	"table_ordering/internal/migrations"

	"gorm.io/gorm/logger"
)

// seedRequested reports whether the sample venue should be loaded: either
// -sample was passed or SEED_SAMPLE_DATA is enabled.
func seedRequested(args []string, envSeed bool) (bool, error) {
	fs := flag.NewFlagSet("init-db", flag.ContinueOnError)
	sample := fs.Bool("sample", false, "seed the test-club sample venue (also enabled by SEED_SAMPLE_DATA)")
	if err := fs.Parse(args); err != nil {
		return false, err
	}
	return *sample || envSeed, nil
}

func main() {
	// Load configuration
	cfg := config.Load()

	seed, err := seedRequested(os.Args[1:], cfg.SeedSampleData)
	if err != nil {
		os.Exit(2)
	}

	fmt.Println("Initializing database...")

	// Initialize database
	db, err := database.Initialize(cfg.DBDriver, cfg.DatabaseURL, logger.Warn)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := migrations.RunMigrations(db, seed); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	fmt.Println("Database initialization completed successfully!")
	if seed {
		fmt.Printf("Sample menu: %s/%s/table/1/\n", cfg.BaseURL, migrations.SampleVenueSlug)
	}
}
