package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
)

type ProductSales struct {
	ProductID uint   `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int64  `json:"quantity"`
	Revenue   int64  `json:"revenue"`
}

type DashboardStats struct {
	Date             string           `json:"date"`
	Revenue          int64            `json:"revenue"`
	TableRevenue     int64            `json:"table_revenue"`
	ProductRevenue   int64            `json:"product_revenue"`
	TransactionCount int64            `json:"transaction_count"`
	AverageTicket    int64            `json:"average_ticket"`
	ActiveSessions   int64            `json:"active_sessions"`
	TableStatus      map[string]int64 `json:"table_status"`
	Reservations     map[string]int64 `json:"reservations"`
	ByMethod         []MethodTotal    `json:"by_method"`
	TopProducts      []ProductSales   `json:"top_products"`
}

type AnalyticsService struct {
	db   *gorm.DB
	opts Options
}

func NewAnalyticsService(db *gorm.DB, opts Options) *AnalyticsService {
	return &AnalyticsService{db: db, opts: opts.withDefaults()}
}

type statusCount struct {
	Status string
	Count  int64
}

// Dashboard summarizes one business day (YYYY-MM-DD, venue time). An empty
// date means today.
func (s *AnalyticsService) Dashboard(ctx context.Context, date string) (*DashboardStats, error) {
	if date == "" {
		date = s.opts.clock().Format(models.DateLayout)
	}
	start, err := time.ParseInLocation(models.DateLayout, date, s.opts.Location)
	if err != nil {
		return nil, precondition("INVALID_DATE", "date must be YYYY-MM-DD")
	}
	end := start.AddDate(0, 0, 1)
	db := s.db.WithContext(ctx)

	stats := &DashboardStats{
		Date:         date,
		TableStatus:  map[string]int64{},
		Reservations: map[string]int64{},
		ByMethod:     []MethodTotal{},
		TopProducts:  []ProductSales{},
	}

	var totals struct {
		Count int64
		Total int64
	}
	if err := db.Model(&models.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	stats.TransactionCount = totals.Count
	stats.Revenue = totals.Total
	if totals.Count > 0 {
		stats.AverageTicket = totals.Total / totals.Count
	}

	var byType []struct {
		Type   string
		Amount int64
	}
	if err := db.Table("order_items").
		Select("order_items.type AS type, COALESCE(SUM(order_items.subtotal), 0) AS amount").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", start, end).
		Group("order_items.type").
		Scan(&byType).Error; err != nil {
		return nil, fmt.Errorf("failed to split revenue: %w", err)
	}
	for _, row := range byType {
		switch models.ItemType(row.Type) {
		case models.ItemTableBill:
			stats.TableRevenue = row.Amount
		case models.ItemProduct:
			stats.ProductRevenue = row.Amount
		}
	}

	if err := db.Table("payments").
		Select("payments.method AS method, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS amount").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.created_at >= ? AND orders.created_at < ?", start, end).
		Group("payments.method").
		Order("amount DESC").
		Scan(&stats.ByMethod).Error; err != nil {
		return nil, fmt.Errorf("failed to group payments: %w", err)
	}

	if err := db.Table("order_items").
		Select("order_items.product_id AS product_id, order_items.name AS name, SUM(order_items.quantity) AS quantity, SUM(order_items.subtotal) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.type = ? AND orders.created_at >= ? AND orders.created_at < ?", models.ItemProduct, start, end).
		Group("order_items.product_id, order_items.name").
		Order("quantity DESC, revenue DESC").
		Limit(5).
		Scan(&stats.TopProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to rank products: %w", err)
	}

	var tables []statusCount
	if err := db.Model(&models.Table{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to count tables: %w", err)
	}
	for _, row := range tables {
		stats.TableStatus[row.Status] = row.Count
	}

	if err := db.Model(&models.Session{}).
		Where("status IN ?", runningSessions).
		Count(&stats.ActiveSessions).Error; err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}

	var reservations []statusCount
	if err := db.Model(&models.Reservation{}).
		Select("status, COUNT(*) AS count").
		Where("booking_date = ?", date).
		Group("status").
		Scan(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to count reservations: %w", err)
	}
	for _, row := range reservations {
		stats.Reservations[row.Status] = row.Count
	}

	return stats, nil
}
