package migrations

import (
	"testing"

	"table_ordering/internal/models"
	"table_ordering/internal/services"
	"table_ordering/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestRunMigrationsCreatesAdmin(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, RunMigrations(db, false))
	require.NoError(t, RunMigrations(db, false))

	var users []models.User
	require.NoError(t, db.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.Equal(t, string(models.Admin), users[0].Role)
	assert.True(t, users[0].IsActive)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users[0].PasswordHash), []byte("admin123")))

	var venues int64
	require.NoError(t, db.Model(&models.Venue{}).Count(&venues).Error)
	assert.Zero(t, venues)
}

func TestSeedSampleData(t *testing.T) {
	db := testutil.NewDB(t)

	require.NoError(t, RunMigrations(db, true))
	require.NoError(t, SeedSampleData(db))

	var venue models.Venue
	require.NoError(t, db.Where("slug = ?", SampleVenueSlug).First(&venue).Error)

	var tables []models.Table
	require.NoError(t, db.Where("venue_id = ?", venue.ID).Order("id").Find(&tables).Error)
	require.Len(t, tables, 12)
	assert.Equal(t, "1", tables[0].Number)
	assert.Equal(t, "test-club_table_VIP2", tables[11].QRCode)

	var categories int64
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.EqualValues(t, 5, categories)

	var lager models.Product
	require.NoError(t, db.Where("venue_id = ? AND name = ?", venue.ID, "Castle Lager").First(&lager).Error)
	assert.Equal(t, "25.00", lager.Price.StringFixed(2))
	assert.True(t, lager.IsAvailable)

	var products int64
	require.NoError(t, db.Model(&models.Product{}).Where("venue_id = ?", venue.ID).Count(&products).Error)
	assert.EqualValues(t, len(sampleProducts), products)
}

func TestSeedSampleDataRollsBackOnFailure(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, RunMigrations(db, false))

	clash := &models.Category{Name: "Snacks", Slug: "snacks", IsActive: true}
	require.NoError(t, db.Create(clash).Error)

	err := SeedSampleData(db)
	require.ErrorIs(t, err, services.ErrValidation)

	var venues, tables, categories int64
	require.NoError(t, db.Model(&models.Venue{}).Count(&venues).Error)
	require.NoError(t, db.Model(&models.Table{}).Count(&tables).Error)
	require.NoError(t, db.Model(&models.Category{}).Count(&categories).Error)
	assert.Zero(t, venues)
	assert.Zero(t, tables)
	assert.EqualValues(t, 1, categories)

	// With the clash gone a retry seeds the full venue.
	require.NoError(t, db.Delete(clash).Error)
	require.NoError(t, SeedSampleData(db))
	require.NoError(t, db.Model(&models.Table{}).Count(&tables).Error)
	assert.EqualValues(t, 12, tables)
}
