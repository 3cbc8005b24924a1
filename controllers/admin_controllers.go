package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
	"github.com/yeremiapane/billiard-pos/utils"
)

const defaultFeedLimit = 50

type AdminController struct {
	DB        *gorm.DB
	Analytics *services.AnalyticsService
}

func NewAdminController(db *gorm.DB, analytics *services.AnalyticsService) *AdminController {
	return &AdminController{DB: db, Analytics: analytics}
}

// GetDashboardStats summarizes ?date=YYYY-MM-DD, today by default.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Analytics.Dashboard(c.Request.Context(), c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// GetNotifications returns the latest persisted floor alerts, newest first.
func (ac *AdminController) GetNotifications(c *gin.Context) {
	query := ac.DB.WithContext(c.Request.Context()).Order("id DESC").Limit(feedLimit(c))
	if kind := c.Query("type"); kind != "" {
		query = query.Where("type = ?", kind)
	}
	notifs := []models.Notification{}
	if err := query.Find(&notifs).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

func (ac *AdminController) GetCleaningLogs(c *gin.Context) {
	query := ac.DB.WithContext(c.Request.Context()).Order("id DESC").Limit(feedLimit(c))
	if tableID := c.Query("table_id"); tableID != "" {
		query = query.Where("table_id = ?", tableID)
	}
	logs := []models.CleaningLog{}
	if err := query.Find(&logs).Error; err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All cleaning logs", logs)
}

func feedLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		return defaultFeedLimit
	}
	return limit
}
