package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"github.com/yeremiapane/restaurant-platform/services"
	"github.com/yeremiapane/restaurant-platform/utils"
)

type DashboardController struct {
	Dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{Dashboard: dashboard}
}

func (dc *DashboardController) window(c *gin.Context) (uint, time.Time, time.Time, error) {
	tenant, err := tenantOf(c)
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	from, to, err := utils.ParseRange(c.Query("from"), c.Query("to"), time.Now())
	if err != nil {
		return 0, time.Time{}, time.Time{}, err
	}
	return tenant, from, to, nil
}

func (dc *DashboardController) GetDashboardStats(c *gin.Context) {
	tenant, from, to, err := dc.window(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	stats, err := dc.Dashboard.Stats(c.Request.Context(), tenant, from, to)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Statistiques", stats)
}

func (dc *DashboardController) GetTopItems(c *gin.Context) {
	tenant, from, to, err := dc.window(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	items, err := dc.Dashboard.TopItems(c.Request.Context(), tenant, from, to, cast.ToInt(c.Query("limit")))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Articles les plus vendus", items)
}

func (dc *DashboardController) GetRevenue(c *gin.Context) {
	tenant, from, to, err := dc.window(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	series, err := dc.Dashboard.Revenue(c.Request.Context(), tenant, from, to)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Chiffre d'affaires", series)
}

func (dc *DashboardController) ExportOrders(c *gin.Context) {
	tenant, from, to, err := dc.window(c)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	filename := fmt.Sprintf("commandes-%s-%s.csv", from.Format("20060102"), to.Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	if err := dc.Dashboard.ExportCSV(c.Request.Context(), tenant, from, to, c.Writer); err != nil {
		utils.ErrorLogger.Errorf("export orders: %v", err)
		c.Status(http.StatusInternalServerError)
	}
}
