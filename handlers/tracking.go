package handlers

import (
	"errors"
	"net/http"

	"market-delivery-api/config"
	"market-delivery-api/models"
	"market-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// statusLabels are the display strings for the tracking timeline
var statusLabels = map[models.OrderStatus]string{
	models.StatusReceived:   "Order received",
	models.StatusShopping:   "Courier is shopping",
	models.StatusInDelivery: "Out for delivery",
	models.StatusDelivered:  "Delivered",
}

type timelineStep struct {
	Status  models.OrderStatus `json:"status"`
	Label   string             `json:"label"`
	Reached bool               `json:"reached"`
}

// statusTimeline derives the progress steps from the current status alone.
// Pure function over the ordered lifecycle, nothing is persisted.
func statusTimeline(current models.OrderStatus) []timelineStep {
	rank := statemachine.Rank(current)
	steps := make([]timelineStep, 0, len(statemachine.StatusOrder))
	for i, s := range statemachine.StatusOrder {
		steps = append(steps, timelineStep{
			Status:  s,
			Label:   statusLabels[s],
			Reached: i <= rank,
		})
	}
	return steps
}

// Tracking composes the polled read-model: status, timeline, route endpoints
// and the assigned courier's identity and last known position. Recomputed
// from the current rows on every call; clients poll every few seconds.
func (h *OrderHandler) Tracking(c *gin.Context) {
	h.trackingByID(c, c.Param("id"))
}

func (h *OrderHandler) trackingByID(c *gin.Context, orderID string) {
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id query parameter is required"})
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

	// Unset route endpoints fall back to the configured souq coordinate so
	// the client map always has something to draw
	pickupLat, pickupLng := config.DefaultPickupLat(), config.DefaultPickupLng()
	if order.PickupLat != nil && order.PickupLng != nil {
		pickupLat, pickupLng = *order.PickupLat, *order.PickupLng
	}
	dropoffLat, dropoffLng := config.DefaultPickupLat()+config.DropoffOffset, config.DefaultPickupLng()+config.DropoffOffset
	if order.DropoffLat != nil && order.DropoffLng != nil {
		dropoffLat, dropoffLng = *order.DropoffLat, *order.DropoffLng
	}

	var courier gin.H
	if order.AssignedCourierEmail != nil {
		courier = gin.H{
			"email":       *order.AssignedCourierEmail,
			"lat":         order.CourierLat,
			"lng":         order.CourierLng,
			"last_update": order.CourierLastUpdate,
		}
		if user, err := h.users.FindByEmail(*order.AssignedCourierEmail); err == nil {
			courier["name"] = user.Name
			courier["phone"] = user.Phone
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"timeline": statusTimeline(order.Status),
		"pickup":   gin.H{"lat": pickupLat, "lng": pickupLng},
		"dropoff":  gin.H{"lat": dropoffLat, "lng": dropoffLng},
		"courier":  courier,
	})
}
