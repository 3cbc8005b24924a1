package database

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/billiard-pos/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{
		&models.Table{}, &models.Session{}, &models.SessionItem{}, &models.Reservation{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.Member{},
		&models.PointLedger{}, &models.Shift{}, &models.Notification{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasColumn(&models.Order{}, "change_amount"))

	// Running twice is harmless.
	require.NoError(t, Migrate(db))
}

func TestSeedIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, Seed(db, "admin@billiard.local", "secret123"))
	require.NoError(t, Seed(db, "admin@billiard.local", "secret123"))

	var admins []models.User
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, models.RoleAdmin, admins[0].Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admins[0].Password), []byte("secret123")))

	var categories int64
	db.Model(&models.ProductCategory{}).Count(&categories)
	assert.Equal(t, int64(3), categories)
}

func TestSeedWithoutPasswordSkipsAdmin(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Seed(db, "admin@billiard.local", ""))

	var users int64
	db.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)
}
