package models

import (
	"time"
)

const (
	PaymentStatusPaid     = "PAID"
	PaymentStatusRefunded = "REFUNDED"
)

// Order is a posted sale. It is written once, together with its items,
// payments and ledger entries, and never edited afterwards.
type Order struct {
	ID             uint        `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string      `gorm:"type:varchar(40);uniqueIndex;not null" json:"invoice_number"`
	SessionID      *uint       `gorm:"index" json:"session_id,omitempty"`
	MemberID       *uint       `gorm:"index" json:"member_id,omitempty"`
	Member         *Member     `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	CustomerName   string      `gorm:"type:varchar(255)" json:"customer_name"`
	ShiftID        *uint       `gorm:"index" json:"shift_id,omitempty"`
	CashierID      *uint       `json:"cashier_id,omitempty"`
	Subtotal       int64       `gorm:"not null" json:"subtotal"`
	Discount       int64       `gorm:"not null;default:0" json:"discount"`
	PointsRedeemed int64       `gorm:"not null;default:0" json:"points_redeemed"`
	PointsDiscount int64       `gorm:"not null;default:0" json:"points_discount"`
	Tax            int64       `gorm:"not null" json:"tax"`
	Total          int64       `gorm:"not null" json:"total"`
	AmountPaid     int64       `gorm:"not null" json:"amount_paid"`
	Change         int64       `gorm:"column:change_amount;not null;default:0" json:"change"`
	PointsEarned   int64       `gorm:"not null;default:0" json:"points_earned"`
	PaymentMethod  string      `gorm:"type:varchar(20);not null;index" json:"payment_method"`
	PaymentStatus  string      `gorm:"type:varchar(20);not null;default:'PAID'" json:"payment_status"`
	OrderItems     []OrderItem `gorm:"foreignKey:OrderID" json:"order_items"`
	Payments       []Payment   `gorm:"foreignKey:OrderID" json:"payments"`
	CreatedAt      time.Time   `gorm:"not null;index" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}
