package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/platoo/order-service/utils"
	"gorm.io/gorm"
)

type HealthController struct {
	DB      *gorm.DB
	Service string
}

func NewHealthController(db *gorm.DB, service string) *HealthController {
	return &HealthController{DB: db, Service: service}
}

// Ping -> GET /ping
func (hc *HealthController) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health -> GET /health, checks the database
func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := hc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		utils.ErrorLogger.Errorf("Health check failed: %v", err)
		utils.RespondJSON(c, http.StatusServiceUnavailable, "unhealthy", gin.H{"service": hc.Service, "database": "down"})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "healthy", gin.H{"service": hc.Service, "database": "up"})
}
