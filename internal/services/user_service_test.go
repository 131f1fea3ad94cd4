package services

import (
	"testing"

	"table_ordering/internal/models"
	"table_ordering/internal/repository"
	"table_ordering/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndAuthenticate(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	venueID := uint(1)
	user := &models.User{Username: "lerato", Role: string(models.Bartender), VenueID: &venueID}
	require.NoError(t, svc.CreateUser(user, "s3cret-pass"))
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	got, err := svc.Authenticate("lerato", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	require.NotNil(t, got.VenueID)
	assert.Equal(t, venueID, *got.VenueID)

	_, err = svc.Authenticate("lerato", "wrong-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Authenticate("nobody", "s3cret-pass")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreateUserValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	assert.ErrorIs(t, svc.CreateUser(&models.User{Username: "a"}, "short"), ErrValidation)
	assert.ErrorIs(t, svc.CreateUser(&models.User{Username: "a", Role: "chef"}, "long-enough"), ErrValidation)
	assert.ErrorIs(t, svc.CreateUser(&models.User{Username: " "}, "long-enough"), ErrValidation)

	require.NoError(t, svc.CreateUser(&models.User{Username: "sipho"}, "long-enough"))
	assert.ErrorIs(t, svc.CreateUser(&models.User{Username: "sipho"}, "long-enough"), ErrValidation)

	user, err := svc.GetUserByUsername("sipho")
	require.NoError(t, err)
	assert.Equal(t, string(models.Waiter), user.Role)

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("is_active", false).Error)
	_, err = svc.Authenticate("sipho", "long-enough")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewUserService(repository.NewUserRepository(db))

	venueID := uint(4)
	user := &models.User{Username: "thabo", VenueID: &venueID}
	require.NoError(t, svc.CreateUser(user, "long-enough"))

	manager := string(models.Manager)
	disabled := false
	newPassword := "even-longer-pass"
	updated, err := svc.UpdateUser(user.ID, UserUpdate{Role: &manager, ClearVenue: true, IsActive: &disabled, Password: &newPassword})
	require.NoError(t, err)
	assert.Equal(t, manager, updated.Role)
	assert.Nil(t, updated.VenueID)
	assert.False(t, updated.IsActive)

	stored, err := svc.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, manager, stored.Role)
	assert.Nil(t, stored.VenueID)
	assert.False(t, stored.IsActive)
	_, err = svc.Authenticate("thabo", newPassword)
	assert.ErrorIs(t, err, ErrUnauthorized)

	enabled := true
	_, err = svc.UpdateUser(user.ID, UserUpdate{IsActive: &enabled})
	require.NoError(t, err)
	_, err = svc.Authenticate("thabo", newPassword)
	assert.NoError(t, err)

	chef := "chef"
	_, err = svc.UpdateUser(user.ID, UserUpdate{Role: &chef})
	assert.ErrorIs(t, err, ErrValidation)
	short := "short"
	_, err = svc.UpdateUser(user.ID, UserUpdate{Password: &short})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateUser(999, UserUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)

	self := repository.Scope{UserID: user.ID, Role: string(models.Admin)}
	assert.ErrorIs(t, svc.DeleteUser(self, user.ID), ErrForbidden)

	admin := repository.Scope{UserID: user.ID + 100, Role: string(models.Admin)}
	require.NoError(t, svc.DeleteUser(admin, user.ID))
	_, err = svc.GetUserByID(user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(admin, user.ID), ErrNotFound)
}
