package database

import (
	"fmt"

	"github.com/platoo/order-service/config"
	"github.com/platoo/order-service/models"
	"github.com/platoo/order-service/utils"
	"gorm.io/gorm"
)

// Migrate creates the tables the given service mode owns.
func Migrate(db *gorm.DB, mode string) error {
	switch mode {
	case config.ModeOrders:
		if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}, &models.OrderCounter{}); err != nil {
			return fmt.Errorf("migrate order tables: %w", err)
		}
		counter := models.OrderCounter{Name: models.OrderCounterName}
		if err := db.Where(models.OrderCounter{Name: models.OrderCounterName}).FirstOrCreate(&counter).Error; err != nil {
			return fmt.Errorf("seed order counter: %w", err)
		}
	case config.ModeMenu:
		if err := db.AutoMigrate(&models.Menu{}); err != nil {
			return fmt.Errorf("migrate menu tables: %w", err)
		}
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}

	utils.InfoLogger.WithField("mode", mode).Info("AutoMigrate completed.")
	return nil
}
