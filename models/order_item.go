package models

import (
	"time"
)

type ItemType string

const (
	ItemTableBill ItemType = "TABLE_BILL"
	ItemProduct   ItemType = "PRODUCT"
)

type OrderItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Type      ItemType  `gorm:"type:varchar(20);not null" json:"type"`
	ProductID *uint     `gorm:"index" json:"product_id,omitempty"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice int64     `gorm:"not null" json:"unit_price"`
	Quantity  int       `gorm:"not null" json:"quantity"`
	Subtotal  int64     `gorm:"not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
