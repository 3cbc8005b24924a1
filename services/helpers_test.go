package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/database"
	"github.com/yeremiapane/billiard-pos/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingHub struct {
	mu     sync.Mutex
	events []string
}

func (h *recordingHub) Broadcast(event string, data interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) count(event string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, e := range h.events {
		if e == event {
			n++
		}
	}
	return n
}

type recordingPublisher struct {
	mu       sync.Mutex
	keys     []string
	payloads []interface{}
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.keys {
		if k == key {
			n++
		}
	}
	return n
}

// venueOpen is the fake "now" every fixture starts at.
var venueOpen = time.Date(2024, 5, 1, 19, 0, 0, 0, time.UTC)

type fixture struct {
	db    *gorm.DB
	clock *fakeClock
	hub   *recordingHub
	pub   *recordingPublisher

	transactions *TransactionService
	tables       *TableService
	reservations *ReservationService
	shifts       *ShiftService
	members      *MemberService
	analytics    *AnalyticsService
}

func newTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		db:    newTestDB(t),
		clock: &fakeClock{now: venueOpen},
		hub:   &recordingHub{},
		pub:   &recordingPublisher{},
	}
	opts := Options{
		Rates:     billing.DefaultRates(),
		Location:  time.UTC,
		Tracker:   billing.NewTracker(billing.DefaultWarnSeconds),
		Hub:       f.hub,
		Publisher: f.pub,
		Now:       f.clock.Now,
	}
	f.transactions = NewTransactionService(f.db, opts)
	f.tables = NewTableService(f.db, f.transactions, opts)
	f.reservations = NewReservationService(f.db, f.tables, opts)
	f.shifts = NewShiftService(f.db, opts)
	f.members = NewMemberService(f.db, opts)
	f.analytics = NewAnalyticsService(f.db, opts)
	return f
}

func (f *fixture) table(t *testing.T, number string, rate int64) models.Table {
	table := models.Table{Number: number, Type: models.TableRegular, HourlyRate: rate, Status: models.TableAvailable}
	require.NoError(t, f.db.Create(&table).Error)
	return table
}

func (f *fixture) product(t *testing.T, name string, price int64, stock int) models.Product {
	var category models.ProductCategory
	require.NoError(t, f.db.FirstOrCreate(&category, models.ProductCategory{Name: "Drinks"}).Error)
	product := models.Product{CategoryID: category.ID, Name: name, Price: price, Stock: stock, Active: true}
	require.NoError(t, f.db.Omit("Category").Create(&product).Error)
	return product
}

func (f *fixture) member(t *testing.T, points, wallet int64) models.Member {
	var n int64
	f.db.Model(&models.Member{}).Count(&n)
	member := models.Member{
		Code:   fmt.Sprintf("M%03d", n+1),
		Name:   fmt.Sprintf("Member %d", n+1),
		Tier:   models.TierBronze,
		Points: points,
		Wallet: wallet,
	}
	require.NoError(t, f.db.Create(&member).Error)
	return member
}

func (f *fixture) user(t *testing.T, role string) models.User {
	var n int64
	f.db.Model(&models.User{}).Count(&n)
	user := models.User{
		Name:     fmt.Sprintf("%s %d", role, n+1),
		Email:    fmt.Sprintf("user%d@billiard.test", n+1),
		Password: "x",
		Role:     role,
	}
	require.NoError(t, f.db.Create(&user).Error)
	return user
}

func (f *fixture) reload(t *testing.T, dest interface{}, id uint) {
	require.NoError(t, f.db.First(dest, id).Error)
}

func uintPtr(v uint) *uint { return &v }
