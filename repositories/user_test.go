package repositories

import (
	"testing"

	"market-delivery-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUpsertLoginCreatesNewUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user, created, err := repo.UpsertLogin("New@Example.com", "New User", "0791111111", models.RoleCustomer)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, models.RoleCustomer, user.Role)
	assert.NotEmpty(t, user.ID)
}

func TestUpsertLoginReturnsExistingUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	first, _, err := repo.UpsertLogin("repeat@example.com", "Repeat", "", models.RoleCourier)
	require.NoError(t, err)

	again, created, err := repo.UpsertLogin("REPEAT@example.com", "Different Name", "", models.RoleCourier)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	// the stored profile wins over whatever the client resent
	assert.Equal(t, "Repeat", again.Name)
}

func TestUpsertLoginRejectsRoleChange(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	_, _, err := repo.UpsertLogin("fixed@example.com", "Fixed", "", models.RoleCustomer)
	require.NoError(t, err)

	_, _, err = repo.UpsertLogin("fixed@example.com", "Fixed", "", models.RoleCourier)
	assert.ErrorIs(t, err, ErrRoleMismatch)
}

func TestFindByEmailIsCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	user := models.User{Name: "Cased", Email: "Cased@Example.COM", Role: models.RoleCustomer}
	require.NoError(t, repo.Create(&user))

	found, err := repo.FindByEmail("cased@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindByRole(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)

	require.NoError(t, repo.Create(&models.User{Name: "C1", Email: "c1@x.com", Role: models.RoleCourier}))
	require.NoError(t, repo.Create(&models.User{Name: "C2", Email: "c2@x.com", Role: models.RoleCourier}))
	require.NoError(t, repo.Create(&models.User{Name: "Cust", Email: "cust@x.com", Role: models.RoleCustomer}))

	couriers, err := repo.FindByRole(models.RoleCourier)
	require.NoError(t, err)
	assert.Len(t, couriers, 2)
}
