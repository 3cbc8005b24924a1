package database

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

// Migrate creates or updates every table of the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Table{},
		&models.Member{},
		&models.PointLedger{},
		&models.ProductCategory{},
		&models.Product{},
		&models.Reservation{},
		&models.Session{},
		&models.SessionItem{},
		&models.Shift{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
		&models.CleaningLog{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

var defaultCategories = []string{"Food", "Drinks", "Snacks"}

// Seed inserts the bootstrap admin and the default product categories into
// an empty store. The admin is skipped when no password is configured; the
// first /register call then creates it.
func Seed(db *gorm.DB, adminEmail, adminPassword string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		if users == 0 && adminPassword != "" {
			hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin := models.User{
				Name:     "Administrator",
				Email:    adminEmail,
				Password: string(hashed),
				Role:     models.RoleAdmin,
			}
			if err := tx.Create(&admin).Error; err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			utils.InfoLogger.Infof("Seeded admin user %s", adminEmail)
		}

		var categories int64
		if err := tx.Model(&models.ProductCategory{}).Count(&categories).Error; err != nil {
			return err
		}
		if categories == 0 {
			for _, name := range defaultCategories {
				if err := tx.Create(&models.ProductCategory{Name: name}).Error; err != nil {
					return fmt.Errorf("create category %s: %w", name, err)
				}
			}
		}
		return nil
	})
}
