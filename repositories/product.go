package repositories

import (
	"market-delivery-api/models"

	"gorm.io/gorm"
)

// ProductRepository handles database operations for the catalog
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// FindAll returns the whole catalog, newest first
func (r *ProductRepository) FindAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Order("created_at desc").Find(&products).Error
	return products, err
}

// FindActive returns only products currently offered to customers
func (r *ProductRepository) FindActive() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("is_active = ?", true).Order("created_at desc").Find(&products).Error
	return products, err
}

// FindByID fetches one product
func (r *ProductRepository) FindByID(id string) (models.Product, error) {
	var product models.Product
	err := r.db.First(&product, "id = ?", id).Error
	return product, err
}

// Create inserts a catalog entry
func (r *ProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// UpdateFields applies a partial update; callers allow-list the fields
func (r *ProductRepository) UpdateFields(id string, updates map[string]interface{}) (models.Product, error) {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return models.Product{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Product{}, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}
