package models

import (
	"fmt"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusReady          OrderStatus = "ready"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var orderStatuses = map[OrderStatus]bool{
	OrderStatusPending:        true,
	OrderStatusPreparing:      true,
	OrderStatusReady:          true,
	OrderStatusOutForDelivery: true,
	OrderStatusDelivered:      true,
	OrderStatusCancelled:      true,
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	return orderStatuses[s]
}

// Terminal reports whether no further status change is allowed.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type Order struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	OrderNumber string      `gorm:"type:varchar(20);uniqueIndex;not null" json:"order_number"`
	UserID      string      `gorm:"type:varchar(64);not null;index" json:"user_id"`
	TotalAmount float64     `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	Status      OrderStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Items       []OrderItem `gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time   `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updatedAt"`
}

// FormatOrderNumber renders the human readable order number, e.g. ORD007.
func FormatOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD%03d", seq)
}

// LineItemRequest is one requested line of a new order. It has no price
// field; prices come from the catalog.
type LineItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity" binding:"required,gt=0"`
}

// OrderFilter narrows ListOrders.
type OrderFilter struct {
	UserID string
	Status OrderStatus
}
