package repositories

import (
	"testing"

	"market-delivery-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInactiveProductStaysInactive(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := models.Product{Name: "Seasonal Figs", Category: "produce", IndicativePrice: 4.0, IsActive: false}
	require.NoError(t, repo.Create(&p))

	stored, err := repo.FindByID(p.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "a product created inactive must not come back active")

	active, err := repo.FindActive()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestInactiveProductRejectedInOrders(t *testing.T) {
	db := newTestDB(t)
	products := NewProductRepository(db)
	orders := NewOrderRepository(db)

	p := models.Product{Name: "Seasonal Figs", Category: "produce", IndicativePrice: 4.0, IsActive: false}
	require.NoError(t, products.Create(&p))

	order := models.Order{
		OrderType:       models.TypeSupermarket,
		CustomerEmail:   "shopper@example.com",
		CustomerName:    "Shopper",
		CustomerPhone:   "0790000001",
		DeliveryAddress: "4 Market Lane",
		Status:          models.StatusReceived,
		Items:           []models.OrderItem{{ProductID: p.ID, Quantity: 1}},
	}
	assert.ErrorIs(t, orders.Create(&order), ErrUnknownProduct)
}

func TestUpdateFieldsTogglesActive(t *testing.T) {
	db := newTestDB(t)
	repo := NewProductRepository(db)

	p := models.Product{Name: "Olive Oil 1L", Category: "pantry", IndicativePrice: 7.5, IsActive: true}
	require.NoError(t, repo.Create(&p))

	updated, err := repo.UpdateFields(p.ID, map[string]interface{}{"is_active": false})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	updated, err = repo.UpdateFields(p.ID, map[string]interface{}{"is_active": true})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)
}
