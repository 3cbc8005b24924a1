package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/controllers"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/services"
)

func setupCashierRouter(db *gorm.DB, user models.User) *gin.Engine {
	opts := services.Options{}
	transactionCtrl := controllers.NewTransactionController(services.NewTransactionService(db, opts))
	shiftCtrl := controllers.NewShiftController(services.NewShiftService(db, opts))
	memberCtrl := controllers.NewMemberController(services.NewMemberService(db, opts))
	adminCtrl := controllers.NewAdminController(db, services.NewAnalyticsService(db, opts))

	router := newEngine()
	router.Use(asUser(user.ID, user.Role))
	router.GET("/transactions", transactionCtrl.GetTransactions)
	router.POST("/transactions", transactionCtrl.CreateTransaction)
	router.GET("/transactions/:id", transactionCtrl.GetTransactionByID)
	router.POST("/shifts/open", shiftCtrl.OpenShift)
	router.GET("/shifts/current", shiftCtrl.CurrentShift)
	router.POST("/shifts/:id/close", shiftCtrl.CloseShift)
	router.GET("/shifts/:id/z-report", shiftCtrl.GetZReport)
	router.GET("/members", memberCtrl.GetMembers)
	router.POST("/members", memberCtrl.CreateMember)
	router.GET("/members/:id", memberCtrl.GetMemberByID)
	router.POST("/members/:id/topup", memberCtrl.TopUp)
	router.GET("/members/:id/points", memberCtrl.GetPoints)
	router.GET("/admin/dashboard/stats", adminCtrl.GetDashboardStats)
	router.GET("/admin/notifications", adminCtrl.GetNotifications)
	router.GET("/admin/cleaning-logs", adminCtrl.GetCleaningLogs)
	return router
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, stock int) models.Product {
	var category models.ProductCategory
	require.NoError(t, db.FirstOrCreate(&category, models.ProductCategory{Name: "Snacks"}).Error)
	product := models.Product{CategoryID: category.ID, Name: name, Price: price, Stock: stock, Active: true}
	require.NoError(t, db.Omit("Category").Create(&product).Error)
	return product
}

func TestShiftWithCounterSale(t *testing.T) {
	db := setupTestDB(t)
	cashier := seedUser(t, db, models.RoleCashier)
	router := setupCashierRouter(db, cashier)
	chips := seedProduct(t, db, "Keripik", 10000, 20)

	w, env := doJSON(t, router, http.MethodGet, "/shifts/current", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SHIFT_NOT_FOUND", env.Code)

	w, env = doJSON(t, router, http.MethodPost, "/shifts/open", map[string]int64{"opening_cash": 200000})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var shift models.Shift
	decode(t, env, &shift)
	assert.NotEmpty(t, shift.Reference)

	w, env = doJSON(t, router, http.MethodPost, "/shifts/open", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SHIFT_ALREADY_OPEN", env.Code)

	w, env = doJSON(t, router, http.MethodPost, "/transactions", map[string]interface{}{
		"payment_method": "CASH",
		"items":          []map[string]interface{}{{"type": "PRODUCT", "product_id": chips.ID, "quantity": 2}},
		"payments":       []map[string]interface{}{{"method": "CASH", "amount": 50000}},
	})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var order models.Order
	decode(t, env, &order)
	// 20000 + 11% tax
	assert.Equal(t, int64(22200), order.Total)

	w, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/transactions/%d", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)

	w, env = doJSON(t, router, http.MethodGet, "/transactions?payment_method=CASH", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var page services.TransactionPage
	decode(t, env, &page)
	assert.Equal(t, int64(1), page.Total)

	w, env = doJSON(t, router, http.MethodPost, "/transactions", map[string]interface{}{
		"payment_method": "CASH",
		"items":          []map[string]interface{}{},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, env = doJSON(t, router, http.MethodPost, fmt.Sprintf("/shifts/%d/close", shift.ID), map[string]int64{"counted_cash": 222200})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var report services.ZReport
	decode(t, env, &report)
	assert.Equal(t, int64(1), report.TransactionCount)
	assert.Equal(t, int64(222200), report.ExpectedCash)
	assert.Equal(t, models.ShiftClosed, report.Shift.Status)

	w, env = doJSON(t, router, http.MethodPost, fmt.Sprintf("/shifts/%d/close", shift.ID), map[string]int64{"counted_cash": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "SHIFT_CLOSED", env.Code)

	w, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/shifts/%d/z-report", shift.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
}

func TestMemberEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupCashierRouter(db, seedUser(t, db, models.RoleCashier))

	w, env := doJSON(t, router, http.MethodPost, "/members", map[string]string{"name": "Putri", "phone": "0811"})
	require.Equal(t, http.StatusCreated, w.Code, env.Message)
	var member models.Member
	decode(t, env, &member)
	assert.NotEmpty(t, member.Code)
	assert.Equal(t, models.TierBronze, member.Tier)

	w, env = doJSON(t, router, http.MethodGet, "/members?search=Put", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []models.Member
	decode(t, env, &members)
	assert.Len(t, members, 1)

	topup := fmt.Sprintf("/members/%d/topup", member.ID)
	w, env = doJSON(t, router, http.MethodPost, topup, map[string]int64{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)

	w, env = doJSON(t, router, http.MethodPost, topup, map[string]int64{"amount": 100000})
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	decode(t, env, &member)
	assert.Equal(t, int64(100000), member.Wallet)

	w, env = doJSON(t, router, http.MethodGet, fmt.Sprintf("/members/%d/points", member.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var ledger []models.PointLedger
	decode(t, env, &ledger)
	require.Len(t, ledger, 1)
	assert.Equal(t, models.LedgerTopUp, ledger[0].Type)

	w, env = doJSON(t, router, http.MethodGet, "/members/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "MEMBER_NOT_FOUND", env.Code)
}

func TestAdminFeeds(t *testing.T) {
	db := setupTestDB(t)
	router := setupCashierRouter(db, seedUser(t, db, models.RoleAdmin))

	w, env := doJSON(t, router, http.MethodGet, "/admin/dashboard/stats?date=2024-13-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_DATE", env.Code)

	w, env = doJSON(t, router, http.MethodGet, "/admin/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, env.Message)
	var stats services.DashboardStats
	decode(t, env, &stats)
	assert.Zero(t, stats.Revenue)

	require.NoError(t, db.Create(&models.Notification{Type: models.NotifAutoCancelled, Message: "first"}).Error)
	require.NoError(t, db.Create(&models.Notification{Type: models.NotifPackageWarning, Message: "second"}).Error)

	w, env = doJSON(t, router, http.MethodGet, "/admin/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notifs []models.Notification
	decode(t, env, &notifs)
	require.Len(t, notifs, 2)
	assert.Equal(t, "second", notifs[0].Message)

	w, env = doJSON(t, router, http.MethodGet, "/admin/notifications?type="+models.NotifAutoCancelled+"&limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, env, &notifs)
	require.Len(t, notifs, 1)
	assert.Equal(t, "first", notifs[0].Message)

	w, env = doJSON(t, router, http.MethodGet, "/admin/cleaning-logs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs []models.CleaningLog
	decode(t, env, &logs)
	assert.Empty(t, logs)
}
