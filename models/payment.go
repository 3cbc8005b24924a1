package models

import (
	"time"
)

const (
	MethodCash     = "CASH"
	MethodQRIS     = "QRIS"
	MethodCard     = "CARD"
	MethodTransfer = "TRANSFER"
	MethodWallet   = "WALLET"
	// MethodSplit marks an order paid with more than one method.
	MethodSplit = "SPLIT"
)

func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodCash, MethodQRIS, MethodCard, MethodTransfer, MethodWallet:
		return true
	}
	return false
}

// Payment is one tendered amount of an order.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	Method    string    `gorm:"type:varchar(20);not null" json:"method"`
	Amount    int64     `gorm:"not null" json:"amount"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
