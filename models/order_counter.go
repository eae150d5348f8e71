package models

// OrderCounter holds the last sequence number handed out for a counter name.
type OrderCounter struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"type:varchar(50);uniqueIndex;not null"`
	Count int64  `gorm:"not null;default:0"`
}

// OrderCounterName names the counter row order numbers are drawn from.
const OrderCounterName = "orders"
