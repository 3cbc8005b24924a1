package models

import "time"

const (
	ShiftOpen   = "OPEN"
	ShiftClosed = "CLOSED"
)

// Shift is a cashier's drawer period, closed with a counted cash amount.
type Shift struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Reference    string     `gorm:"type:varchar(40);uniqueIndex;not null" json:"reference"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"user"`
	OpenedAt     time.Time  `gorm:"not null" json:"opened_at"`
	ClosedAt     *time.Time `json:"closed_at,omitempty"`
	OpeningCash  int64      `gorm:"not null" json:"opening_cash"`
	ExpectedCash int64      `gorm:"not null;default:0" json:"expected_cash"`
	CountedCash  int64      `gorm:"not null;default:0" json:"counted_cash"`
	Difference   int64      `gorm:"not null;default:0" json:"difference"`
	Status       string     `gorm:"type:varchar(10);not null;default:'OPEN';index" json:"status"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"not null" json:"updated_at"`
}
