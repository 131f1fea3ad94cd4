// Package testutil builds throwaway SQLite databases, in-process Redis
// servers and catalog fixtures for package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"table_ordering/internal/database"
	"table_ordering/internal/models"
	"table_ordering/internal/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a migrated SQLite database in a temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := database.Initialize("sqlite", dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewRedis starts a miniredis server and returns a cart store bound to it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return redis.NewFromClient(rdb), mr
}

// Catalog is the sample venue used across tests.
type Catalog struct {
	Venue    *models.Venue
	Table    *models.Table
	VIPTable *models.Table
	Beers    *models.Category
	Drinks   *models.Category
	Lager    *models.Product
	Coke     *models.Product
	Water    *models.Product
}

func mustCreate(t *testing.T, db *gorm.DB, value interface{}) {
	t.Helper()
	if err := db.Create(value).Error; err != nil {
		t.Fatalf("failed to create fixture %T: %v", value, err)
	}
}

// SeedCatalog creates venue slug with two tables, two categories and three
// available products: Castle Lager 25.00, Coke 15.00 and Water 10.00.
func SeedCatalog(t *testing.T, db *gorm.DB, slug string) *Catalog {
	t.Helper()
	c := &Catalog{}

	c.Venue = &models.Venue{Name: "Venue " + slug, Slug: slug, IsActive: true}
	mustCreate(t, db, c.Venue)

	c.Table = &models.Table{VenueID: c.Venue.ID, Number: "1", QRCode: slug + "_table_1", IsActive: true}
	mustCreate(t, db, c.Table)
	c.VIPTable = &models.Table{VenueID: c.Venue.ID, Number: "VIP1", QRCode: slug + "_table_VIP1", IsActive: true}
	mustCreate(t, db, c.VIPTable)

	c.Beers = &models.Category{Name: "Beers", Slug: slug + "-beers", DisplayOrder: 1, IsActive: true}
	mustCreate(t, db, c.Beers)
	c.Drinks = &models.Category{Name: "Soft Drinks", Slug: slug + "-soft-drinks", DisplayOrder: 2, IsActive: true}
	mustCreate(t, db, c.Drinks)

	c.Lager = &models.Product{VenueID: c.Venue.ID, CategoryID: c.Beers.ID, Name: "Castle Lager", Price: decimal.RequireFromString("25.00"), IsAvailable: true}
	mustCreate(t, db, c.Lager)
	c.Coke = &models.Product{VenueID: c.Venue.ID, CategoryID: c.Drinks.ID, Name: "Coke", Price: decimal.RequireFromString("15.00"), IsAvailable: true}
	mustCreate(t, db, c.Coke)
	c.Water = &models.Product{VenueID: c.Venue.ID, CategoryID: c.Drinks.ID, Name: "Water", Price: decimal.RequireFromString("10.00"), IsAvailable: true, DisplayOrder: 1}
	mustCreate(t, db, c.Water)

	return c
}

// SetAvailable flips a product's availability. A plain Create cannot store
// false because of the column default.
func SetAvailable(t *testing.T, db *gorm.DB, product *models.Product, available bool) {
	t.Helper()
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_available", available).Error; err != nil {
		t.Fatalf("failed to update availability: %v", err)
	}
	product.IsAvailable = available
}
