package handlers

import (
	"net/http"

	"market-delivery-api/models"
	"market-delivery-api/repositories"
	"market-delivery-api/statemachine"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves the dashboard and courier aggregate endpoints
type AdminHandler struct {
	orders *repositories.OrderRepository
	users  *repositories.UserRepository
}

func NewAdminHandler(orders *repositories.OrderRepository, users *repositories.UserRepository) *AdminHandler {
	return &AdminHandler{orders: orders, users: users}
}

// Stats returns order counts grouped by lifecycle state and by order type
func (h *AdminHandler) Stats(c *gin.Context) {
	byStatus, err := h.orders.CountsByStatus()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	byType, err := h.orders.CountsByType()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	c.JSON(http.StatusOK, gin.H{
		"total_orders": total,
		"by_status":    byStatus,
		"by_type":      byType,
	})
}

// ListCouriers returns every courier account
func (h *AdminHandler) ListCouriers(c *gin.Context) {
	couriers, err := h.users.FindByRole(models.RoleCourier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load couriers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(couriers), "couriers": couriers})
}

// CourierStats returns assignment counts for a single courier
func (h *AdminHandler) CourierStats(c *gin.Context) {
	email := c.Param("email")
	assigned, byStatus, err := h.orders.CourierStats(email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load courier stats"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"email":     email,
		"assigned":  assigned,
		"by_status": byStatus,
		"delivered": byStatus[string(models.StatusDelivered)],
	})
}

// StateMachineInfo returns the lifecycle transition table for documentation
func (h *AdminHandler) StateMachineInfo(c *gin.Context) {
	transitions := statemachine.GetAllTransitions()
	info := make([]gin.H, 0, len(transitions))
	for _, t := range transitions {
		info = append(info, gin.H{"from": t.From, "to": t.To})
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   info,
		"terminal_states": []models.OrderStatus{models.StatusDelivered},
		"description":     "Market Delivery Order Lifecycle State Machine",
	})
}
