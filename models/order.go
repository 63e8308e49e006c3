package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderStatus represents all possible states of a market delivery order
type OrderStatus string

const (
	StatusReceived   OrderStatus = "received"
	StatusShopping   OrderStatus = "shopping"
	StatusInDelivery OrderStatus = "in_delivery"
	StatusDelivered  OrderStatus = "delivered"
)

// OrderType distinguishes catalog-backed orders from freeform shopping lists
type OrderType string

const (
	TypeSupermarket OrderType = "supermarket"
	TypeSouq        OrderType = "souq"
)

type Order struct {
	ID                   string               `json:"id" gorm:"primaryKey"`
	OrderType            OrderType            `json:"order_type" gorm:"not null"`
	CustomerEmail        string               `json:"customer_email" gorm:"index;not null"`
	CustomerName         string               `json:"customer_name" gorm:"not null"`
	CustomerPhone        string               `json:"customer_phone" gorm:"not null"`
	DeliveryAddress      string               `json:"delivery_address" gorm:"not null"`
	Status               OrderStatus          `json:"status" gorm:"not null;default:'received'"`
	AssignedCourierEmail *string              `json:"assigned_courier_email" gorm:"index"`
	DeliveryFee          float64              `json:"delivery_fee"`
	FinalTotal           *float64             `json:"final_total"` // settled from the physical receipt, not the indicative prices
	Notes                string               `json:"notes"`
	SouqListText         string               `json:"souq_list_text"`
	QualityPreference    string               `json:"quality_preference"`
	BudgetEnabled        bool                 `json:"budget_enabled"`
	BudgetMax            float64              `json:"budget_max"`
	PreferredTimeWindow  string               `json:"preferred_time_window"`
	PickupLat            *float64             `json:"pickup_lat"`
	PickupLng            *float64             `json:"pickup_lng"`
	DropoffLat           *float64             `json:"dropoff_lat"`
	DropoffLng           *float64             `json:"dropoff_lng"`
	CourierLat           *float64             `json:"courier_lat"`
	CourierLng           *float64             `json:"courier_lng"`
	CourierLastUpdate    *time.Time           `json:"courier_last_update"`
	Items                []OrderItem          `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory        []OrderStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	o.CustomerEmail = strings.ToLower(strings.TrimSpace(o.CustomerEmail))
	return nil
}

type OrderItem struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	OrderID         string  `json:"order_id" gorm:"index;not null"`
	ProductID       string  `json:"product_id" gorm:"not null"`
	Product         Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Name            string  `json:"name"` // snapshot name at time of order
	Quantity        int     `json:"quantity" gorm:"not null"`
	IndicativePrice float64 `json:"indicative_price" gorm:"not null"` // snapshot price at time of order
}

// OrderStatusHistory tracks every status change — audit trail
type OrderStatusHistory struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	OrderID    string      `json:"order_id" gorm:"index;not null"`
	FromStatus OrderStatus `json:"from_status"`
	ToStatus   OrderStatus `json:"to_status" gorm:"not null"`
	ChangedBy  string      `json:"changed_by"` // email of the actor who triggered the transition
	Note       string      `json:"note"`
	CreatedAt  time.Time   `json:"created_at"`
}
