package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"market-delivery-api/config"
	"market-delivery-api/middleware"
	"market-delivery-api/models"
	"market-delivery-api/repositories"
	"market-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// OrderHandler serves the order lifecycle endpoints
type OrderHandler struct {
	orders *repositories.OrderRepository
	users  *repositories.UserRepository
}

func NewOrderHandler(orders *repositories.OrderRepository, users *repositories.UserRepository) *OrderHandler {
	return &OrderHandler{orders: orders, users: users}
}

type CreateOrderRequest struct {
	OrderType       models.OrderType `json:"orderType" binding:"required"`
	CustomerEmail   string           `json:"customerEmail" binding:"required,email"`
	CustomerName    string           `json:"customerName" binding:"required"`
	CustomerPhone   string           `json:"customerPhone" binding:"required"`
	DeliveryAddress string           `json:"deliveryAddress" binding:"required"`
	Items           []struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  int    `json:"quantity" binding:"required,min=1"`
	} `json:"items"`
	SouqListText        string   `json:"souqListText"`
	Notes               string   `json:"notes"`
	QualityPreference   string   `json:"qualityPreference"`
	BudgetEnabled       bool     `json:"budgetEnabled"`
	BudgetMax           float64  `json:"budgetMax"`
	PreferredTimeWindow string   `json:"preferredTimeWindow"`
	PickupLat           *float64 `json:"pickupLat"`
	PickupLng           *float64 `json:"pickupLng"`
	DropoffLat          *float64 `json:"dropoffLat"`
	DropoffLng          *float64 `json:"dropoffLng"`
}

// Create places a new order. The header, its items and the initial audit row
// are written in one transaction.
func (h *OrderHandler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.OrderType {
	case models.TypeSupermarket:
		if len(req.Items) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A supermarket order needs at least one item"})
			return
		}
	case models.TypeSouq:
		if req.SouqListText == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A souq order needs a shopping list"})
			return
		}
		if len(req.Items) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "A souq order cannot carry catalog items"})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order type. Must be: supermarket or souq"})
		return
	}

	var items []models.OrderItem
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}

	order := models.Order{
		OrderType:           req.OrderType,
		CustomerEmail:       req.CustomerEmail,
		CustomerName:        req.CustomerName,
		CustomerPhone:       req.CustomerPhone,
		DeliveryAddress:     req.DeliveryAddress,
		Status:              models.StatusReceived,
		DeliveryFee:         config.DefaultDeliveryFee(),
		Notes:               req.Notes,
		SouqListText:        req.SouqListText,
		QualityPreference:   req.QualityPreference,
		BudgetEnabled:       req.BudgetEnabled,
		BudgetMax:           req.BudgetMax,
		PreferredTimeWindow: req.PreferredTimeWindow,
		PickupLat:           req.PickupLat,
		PickupLng:           req.PickupLng,
		DropoffLat:          req.DropoffLat,
		DropoffLng:          req.DropoffLng,
		Items:               items,
	}

	if err := h.orders.Create(&order); err != nil {
		if errors.Is(err, repositories.ErrUnknownProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "One of the items references an unknown or inactive product"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order placed successfully", "order": order})
}

// List serves the collection endpoint and its query-parameter variants,
// including the legacy ?action=tracking&id= alias kept for older clients.
func (h *OrderHandler) List(c *gin.Context) {
	if c.Query("action") == "tracking" {
		h.trackingByID(c, c.Query("id"))
		return
	}
	if id := c.Query("id"); id != "" {
		h.getByID(c, id)
		return
	}
	if c.Query("available") == "true" {
		orders, err := h.orders.FindAvailable()
		h.respondList(c, orders, err)
		return
	}

	role := c.Query("role")
	email := c.Query("email")
	switch {
	case role == string(models.RoleCustomer) && email != "":
		orders, err := h.orders.FindByCustomerEmail(email)
		h.respondList(c, orders, err)
	case role == string(models.RoleCourier) && email != "":
		orders, err := h.orders.FindByCourierEmail(email)
		h.respondList(c, orders, err)
	default:
		orders, err := h.orders.FindAll()
		h.respondList(c, orders, err)
	}
}

func (h *OrderHandler) respondList(c *gin.Context, orders []models.Order, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

// Get returns a single order by path id
func (h *OrderHandler) Get(c *gin.Context) {
	h.getByID(c, c.Param("id"))
}

func (h *OrderHandler) getByID(c *gin.Context, id string) {
	order, err := h.orders.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// Items returns an order's line items joined with product name and image
func (h *OrderHandler) Items(c *gin.Context) {
	orderID := c.Param("id")
	if _, err := h.orders.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}
	items, err := h.orders.FindItems(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load items"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(items), "items": items})
}

type ClaimRequest struct {
	CourierEmail string `json:"courierEmail" binding:"required,email"`
}

// Claim binds an unassigned order to exactly one courier. Concurrent claims
// are settled by a single conditional update in the repository: one winner,
// everyone else gets a conflict.
func (h *OrderHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.Claim(c.Param("id"), req.CourierEmail)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.Is(err, repositories.ErrAlreadyClaimed):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order has already been claimed by another courier"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to claim order"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Order claimed successfully",
		"order":   order,
	})
}

type UpdateOrderRequest struct {
	Status               *models.OrderStatus `json:"status"`
	AssignedCourierEmail *string             `json:"assignedCourierEmail"`
	FinalTotal           *float64            `json:"finalTotal"`
	Notes                *string             `json:"notes"`
	CourierLat           *float64            `json:"courierLat"`
	CourierLng           *float64            `json:"courierLng"`
}

// Update applies a partial update. Status changes must follow the
// forward-only lifecycle; other fields are last-write-wins by design
// (single courier per order, one admin action at a time).
func (h *OrderHandler) Update(c *gin.Context) {
	orderID := c.Param("id")

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load order"})
		return
	}

	updates := map[string]interface{}{}
	if req.Status != nil {
		if !statemachine.ValidStatus(*req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown status: " + string(*req.Status)})
			return
		}
		if err := statemachine.CanTransition(order.Status, *req.Status); err != nil {
			c.JSON(http.StatusConflict, gin.H{
				"error":             "Invalid state transition",
				"current_status":    order.Status,
				"requested":         *req.Status,
				"reason":            err.Error(),
				"valid_next_states": statemachine.ValidTransitionsFrom(order.Status),
			})
			return
		}
		updates["status"] = *req.Status
	}
	if req.AssignedCourierEmail != nil {
		updates["assigned_courier_email"] = strings.ToLower(strings.TrimSpace(*req.AssignedCourierEmail))
	}
	if req.FinalTotal != nil {
		updates["final_total"] = *req.FinalTotal
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if req.CourierLat != nil {
		updates["courier_lat"] = *req.CourierLat
	}
	if req.CourierLng != nil {
		updates["courier_lng"] = *req.CourierLng
	}

	updated, err := h.orders.UpdateFields(orderID, updates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	if req.Status != nil {
		err := h.orders.AddHistory(models.OrderStatusHistory{
			OrderID:    orderID,
			FromStatus: order.Status,
			ToStatus:   *req.Status,
			ChangedBy:  middleware.CallerEmail(c, "admin"),
		})
		if err != nil {
			// the update itself committed; the audit trail is best effort here
			log.Printf("failed to record status history for order %s: %v", orderID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order updated", "order": updated})
}

type CourierLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lng *float64 `json:"lng" binding:"required"`
}

// CourierLocation records the courier's current GPS position. The repository
// stamps courier_last_update alongside the coordinates.
func (h *OrderHandler) CourierLocation(c *gin.Context) {
	orderID := c.Param("id")

	var req CourierLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.orders.UpdateFields(orderID, map[string]interface{}{
		"courier_lat": *req.Lat,
		"courier_lng": *req.Lng,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update courier location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":             "Courier location updated",
		"order_id":            order.ID,
		"courier_lat":         order.CourierLat,
		"courier_lng":         order.CourierLng,
		"courier_last_update": order.CourierLastUpdate,
	})
}
