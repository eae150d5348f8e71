package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Menu struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	IsAvailable bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt   time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"not null" json:"updatedAt"`
}

// CatalogEntry is the read-only view of a menu item served to other services.
type CatalogEntry struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable bool            `json:"is_available"`
}

// ToCatalogEntry converts a stored menu item to its catalog representation.
func (m Menu) ToCatalogEntry() CatalogEntry {
	return CatalogEntry{
		ID:          strconv.FormatUint(uint64(m.ID), 10),
		Name:        m.Name,
		Description: m.Description,
		Price:       decimal.NewFromFloat(m.Price),
		IsAvailable: m.IsAvailable,
	}
}
