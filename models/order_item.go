package models

type OrderItem struct {
	ID      uint `gorm:"primaryKey" json:"-"`
	OrderID uint `gorm:"not null;index" json:"-"`
	// Omitting Order field from JSON to avoid recursive nesting
	MenuItemID string  `gorm:"type:varchar(64);not null" json:"menu_item_id"`
	Quantity   int     `gorm:"not null" json:"quantity"`
	Price      float64 `gorm:"type:decimal(10,2);not null" json:"price"`
}
