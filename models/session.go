package models

import "time"

type SessionStatus string

const (
	SessionOpen   SessionStatus = "OPEN"
	SessionPaused SessionStatus = "PAUSED"
	SessionClosed SessionStatus = "CLOSED"
)

// Session is one continuous occupancy of a table, from start to checkout.
// EndTime and PackageSeconds are set only for fixed packages. WarnedAt and
// ExpiredAt record the package alerts already raised for the session.
type Session struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	TableID        uint          `gorm:"not null;index" json:"table_id"`
	Table          Table         `gorm:"foreignKey:TableID" json:"table"`
	StartTime      time.Time     `gorm:"not null" json:"start_time"`
	EndTime        *time.Time    `json:"end_time,omitempty"`
	PackageSeconds int64         `gorm:"not null;default:0" json:"package_seconds"`
	HourlyRate     int64         `gorm:"not null" json:"hourly_rate"`
	CarriedAmount  int64         `gorm:"not null;default:0" json:"carried_amount"`
	PausedAt       *time.Time    `json:"paused_at,omitempty"`
	PausedSeconds  int64         `gorm:"not null;default:0" json:"paused_seconds"`
	WarnedAt       *time.Time    `json:"warned_at,omitempty"`
	ExpiredAt      *time.Time    `json:"expired_at,omitempty"`
	CustomerName   string        `gorm:"type:varchar(255)" json:"customer_name"`
	MemberID       *uint         `gorm:"index" json:"member_id,omitempty"`
	Member         *Member       `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	ReservationID  *uint         `json:"reservation_id,omitempty"`
	Status         SessionStatus `gorm:"type:varchar(20);not null;default:'OPEN';index" json:"status"`
	ClosedAt       *time.Time    `json:"closed_at,omitempty"`
	OrderID        *uint         `json:"order_id,omitempty"`
	// TableBillOrderID is the by-item order that paid the table time before
	// the session closed; TableBillPaid is the amount it settled.
	TableBillOrderID *uint `gorm:"index" json:"table_bill_order_id,omitempty"`
	TableBillPaid    int64 `gorm:"not null;default:0" json:"table_bill_paid"`
	Items          []SessionItem `gorm:"foreignKey:SessionID" json:"items"`
	CreatedAt      time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null" json:"updated_at"`
}

// IsPackage reports whether the session was sold as a fixed-duration package.
func (s Session) IsPackage() bool {
	return s.PackageSeconds > 0
}

// SessionItem is an F&B line ordered during a session and billed at checkout.
type SessionItem struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionID      uint      `gorm:"not null;index" json:"session_id"`
	ProductID      uint      `gorm:"not null" json:"product_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice      int64     `gorm:"not null" json:"unit_price"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	SettledOrderID *uint     `gorm:"index" json:"settled_order_id,omitempty"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (i SessionItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}
