package repositories

import (
	"strings"
	"testing"

	"market-delivery-api/config"
	"market-delivery-api/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test. A single connection
// keeps sqlite writes serialized, which is what the conditional-update claim
// relies on the store for.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, active bool) models.Product {
	t.Helper()
	p := models.Product{Name: name, Category: "produce", IndicativePrice: price, IsActive: active}
	require.NoError(t, NewProductRepository(db).Create(&p))
	return p
}

func seedSouqOrder(t *testing.T, db *gorm.DB, customerEmail string) models.Order {
	t.Helper()
	order := models.Order{
		OrderType:       models.TypeSouq,
		CustomerEmail:   customerEmail,
		CustomerName:    "Test Customer",
		CustomerPhone:   "0790000000",
		DeliveryAddress: "12 Rainbow St",
		Status:          models.StatusReceived,
		DeliveryFee:     2.0,
		SouqListText:    "2kg tomatoes, 1 chicken",
	}
	require.NoError(t, NewOrderRepository(db).Create(&order))
	return order
}
