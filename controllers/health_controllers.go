package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-platform/utils"
)

type HealthController struct {
	DB *sql.DB
}

func NewHealthController(db *sql.DB) *HealthController {
	return &HealthController{DB: db}
}

func (hc *HealthController) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := hc.DB.PingContext(ctx); err != nil {
		utils.ErrorLogger.Errorf("health check: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "up", "database": "up"})
}
