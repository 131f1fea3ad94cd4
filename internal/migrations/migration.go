package migrations

import (
	"log"

	"table_ordering/internal/database"
	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/services"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const SampleVenueSlug = "test-club"

// RunMigrations runs all database migrations and creates default data.
// With seed set it also loads the sample venue.
func RunMigrations(db *gorm.DB, seed bool) error {
	log.Println("Running database migrations...")

	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	if err := createDefaultData(db); err != nil {
		log.Printf("Warning: Failed to create default data: %v", err)
	}

	if seed {
		if err := SeedSampleData(db); err != nil {
			return err
		}
	}

	log.Println("Database migrations completed successfully!")
	return nil
}

// createDefaultData creates the initial admin account.
func createDefaultData(db *gorm.DB) error {
	userService := services.NewUserService(repository.NewUserRepository(db))

	existingUser, err := userService.GetUserByUsername("admin")
	if err == nil && existingUser != nil {
		log.Println("Admin user already exists")
		return nil
	}

	log.Println("Creating admin user...")
	admin := &models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Role:     string(models.Admin),
	}
	if err := userService.CreateUser(admin, "admin123"); err != nil {
		return err
	}
	log.Println("Admin user created (username: admin, password: admin123)")
	return nil
}

type sampleProduct struct {
	category string
	name     string
	price    string
}

var sampleCategories = []services.CategoryInput{
	{Name: "Beers", Slug: "beers", Icon: "🍺", DisplayOrder: 1},
	{Name: "Spirits", Slug: "spirits", Icon: "🥃", DisplayOrder: 2},
	{Name: "Cocktails", Slug: "cocktails", Icon: "🍸", DisplayOrder: 3},
	{Name: "Soft Drinks", Slug: "soft-drinks", Icon: "🥤", DisplayOrder: 4},
	{Name: "Snacks", Slug: "snacks", Icon: "🍟", DisplayOrder: 5},
}

var sampleProducts = []sampleProduct{
	{"beers", "Castle Lager", "25.00"},
	{"beers", "Black Label", "28.00"},
	{"beers", "Heineken", "32.00"},
	{"spirits", "Jameson Shot", "35.00"},
	{"spirits", "Jägermeister Shot", "30.00"},
	{"cocktails", "Mojito", "65.00"},
	{"cocktails", "Long Island Iced Tea", "85.00"},
	{"soft-drinks", "Coke", "15.00"},
	{"soft-drinks", "Red Bull", "30.00"},
	{"soft-drinks", "Still Water", "12.00"},
	{"snacks", "Loaded Fries", "45.00"},
	{"snacks", "Chicken Wings", "75.00"},
}

// SeedSampleData creates the test-club venue with tables 1-10, VIP1 and
// VIP2, five categories and a small drinks menu in one transaction. It does
// nothing when the venue already exists.
func SeedSampleData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Venue{}).Where("slug = ?", SampleVenueSlug).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			log.Println("Sample venue already exists")
			return nil
		}

		log.Println("Seeding sample venue...")
		return seedCatalog(services.NewCatalogService(repository.NewCatalogRepository(tx)))
	})
}

func seedCatalog(catalog services.CatalogService) error {
	scope := repository.AllVenues()

	venue, err := catalog.CreateVenue(services.VenueInput{
		Name:        "Test Club",
		Slug:        SampleVenueSlug,
		Description: "Sample venue for local development",
		Address:     "1 Main Road",
	})
	if err != nil {
		return err
	}

	tables := []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "VIP1", "VIP2"}
	for _, number := range tables {
		if _, err := catalog.CreateTable(scope, venue.ID, number); err != nil {
			return err
		}
	}

	categoryIDs := make(map[string]uint, len(sampleCategories))
	for _, input := range sampleCategories {
		category, err := catalog.CreateCategory(input)
		if err != nil {
			return err
		}
		categoryIDs[input.Slug] = category.ID
	}

	for i, p := range sampleProducts {
		_, err := catalog.CreateProduct(scope, services.ProductInput{
			VenueID:      venue.ID,
			CategoryID:   categoryIDs[p.category],
			Name:         p.name,
			Price:        decimal.RequireFromString(p.price),
			DisplayOrder: i,
		})
		if err != nil {
			return err
		}
	}

	log.Printf("Sample venue %q created with %d tables and %d products", venue.Slug, len(tables), len(sampleProducts))
	return nil
}
