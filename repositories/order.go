package repositories

import (
	"errors"
	"strings"
	"time"

	"market-delivery-api/models"

	"gorm.io/gorm"
)

// ErrAlreadyClaimed is returned when a courier tries to claim an order that
// another courier already holds.
var ErrAlreadyClaimed = errors.New("order already claimed by another courier")

// ErrUnknownProduct is returned when an order item references a product that
// does not exist or is inactive.
var ErrUnknownProduct = errors.New("order item references an unknown or inactive product")

// OrderRepository handles database operations for orders and their items
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order header, its items and the initial history row in
// a single transaction. An unknown product aborts the whole write — an order
// is never observable with a partial item set.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		items := order.Items
		order.Items = nil
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			var product models.Product
			if err := tx.First(&product, "id = ? AND is_active = ?", items[i].ProductID, true).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrUnknownProduct
				}
				return err
			}
			items[i].OrderID = order.ID
			items[i].Name = product.Name
			items[i].IndicativePrice = product.IndicativePrice
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		order.Items = items

		history := models.OrderStatusHistory{
			OrderID:   order.ID,
			ToStatus:  models.StatusReceived,
			ChangedBy: order.CustomerEmail,
			Note:      "Order placed by customer",
		}
		return tx.Create(&history).Error
	})
}

// FindAll returns every order, newest first
func (r *OrderRepository) FindAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").Order("created_at desc").Find(&orders).Error
	return orders, err
}

// FindByCustomerEmail returns a customer's orders, newest first.
// Matching is case-insensitive.
func (r *OrderRepository) FindByCustomerEmail(email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("LOWER(customer_email) = ?", strings.ToLower(email)).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// FindByCourierEmail returns the orders assigned to a courier, newest first
func (r *OrderRepository) FindByCourierEmail(email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("LOWER(assigned_courier_email) = ?", strings.ToLower(email)).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// FindAvailable returns unclaimed orders for couriers to browse, newest first
func (r *OrderRepository) FindAvailable() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("assigned_courier_email IS NULL").
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}

// FindByID fetches a single order with items and history
func (r *OrderRepository) FindByID(id string) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items.Product").Preload("StatusHistory").First(&order, "id = ?", id).Error
	return order, err
}

// FindItems returns an order's line items joined with their products
func (r *OrderRepository) FindItems(orderID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := r.db.Preload("Product").Where("order_id = ?", orderID).Find(&items).Error
	return items, err
}

// Claim atomically assigns an unclaimed order to a courier and moves it to
// shopping. The precondition check and the write are one conditional UPDATE —
// under concurrent claims exactly one courier wins and the rest observe
// ErrAlreadyClaimed.
func (r *OrderRepository) Claim(orderID, courierEmail string) (models.Order, error) {
	email := strings.ToLower(strings.TrimSpace(courierEmail))
	// The audit row shares the claim's transaction: a courier is never told
	// the claim failed after the assignment has already committed.
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND assigned_courier_email IS NULL", orderID).
			Updates(map[string]interface{}{
				"assigned_courier_email": email,
				"status":                 models.StatusShopping,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race, or the order never existed — disambiguate for the caller
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return gorm.ErrRecordNotFound
			}
			return ErrAlreadyClaimed
		}

		history := models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: models.StatusReceived,
			ToStatus:   models.StatusShopping,
			ChangedBy:  email,
			Note:       "Order claimed by courier",
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	return r.FindByID(orderID)
}

// UpdateFields applies a partial update to an order. Updating the courier
// position also stamps courier_last_update. Callers validate status
// transitions before reaching here.
func (r *OrderRepository) UpdateFields(orderID string, updates map[string]interface{}) (models.Order, error) {
	if len(updates) > 0 {
		_, latOK := updates["courier_lat"]
		_, lngOK := updates["courier_lng"]
		if latOK || lngOK {
			updates["courier_last_update"] = time.Now()
		}
		res := r.db.Model(&models.Order{}).Where("id = ?", orderID).Updates(updates)
		if res.Error != nil {
			return models.Order{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.Order{}, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(orderID)
}

// AddHistory appends an audit row for a status change
func (r *OrderRepository) AddHistory(h models.OrderStatusHistory) error {
	return r.db.Create(&h).Error
}

// CountsByStatus aggregates order counts keyed by lifecycle state
func (r *OrderRepository) CountsByStatus() (map[string]int64, error) {
	return r.countsBy("status")
}

// CountsByType aggregates order counts keyed by order type
func (r *OrderRepository) CountsByType() (map[string]int64, error) {
	return r.countsBy("order_type")
}

func (r *OrderRepository) countsBy(column string) (map[string]int64, error) {
	type row struct {
		Key   string
		Count int64
	}
	var rows []row
	err := r.db.Model(&models.Order{}).
		Select(column + " as key, count(*) as count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, rw := range rows {
		counts[rw.Key] = rw.Count
	}
	return counts, nil
}

// CourierStats returns delivery counts for a single courier
func (r *OrderRepository) CourierStats(email string) (assigned int64, byStatus map[string]int64, err error) {
	lower := strings.ToLower(email)
	if err = r.db.Model(&models.Order{}).
		Where("LOWER(assigned_courier_email) = ?", lower).
		Count(&assigned).Error; err != nil {
		return 0, nil, err
	}

	type row struct {
		Key   string
		Count int64
	}
	var rows []row
	err = r.db.Model(&models.Order{}).
		Select("status as key, count(*) as count").
		Where("LOWER(assigned_courier_email) = ?", lower).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return 0, nil, err
	}
	byStatus = make(map[string]int64, len(rows))
	for _, rw := range rows {
		byStatus[rw.Key] = rw.Count
	}
	return assigned, byStatus, nil
}
