package models

import "time"

type MemberTier string

const (
	TierBronze MemberTier = "BRONZE"
	TierSilver MemberTier = "SILVER"
	TierGold   MemberTier = "GOLD"
)

type Member struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Code      string     `gorm:"type:varchar(30);uniqueIndex;not null" json:"code"`
	Name      string     `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string     `gorm:"type:varchar(30)" json:"phone"`
	Tier      MemberTier `gorm:"type:varchar(10);not null;default:'BRONZE'" json:"tier"`
	Points    int64      `gorm:"not null;default:0" json:"points"`
	Wallet    int64      `gorm:"not null;default:0" json:"wallet"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

type LedgerType string

const (
	LedgerEarn   LedgerType = "EARN"
	LedgerRedeem LedgerType = "REDEEM"
	LedgerTopUp  LedgerType = "TOPUP"
)

// PointLedger records every movement of a member's points (EARN, REDEEM)
// and wallet top-ups (TOPUP, amount in Points is currency units).
type PointLedger struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	MemberID     uint       `gorm:"not null;index" json:"member_id"`
	OrderID      *uint      `gorm:"index" json:"order_id,omitempty"`
	Type         LedgerType `gorm:"type:varchar(10);not null" json:"type"`
	Points       int64      `gorm:"not null" json:"points"`
	BalanceAfter int64      `gorm:"not null" json:"balance_after"`
	CreatedAt    time.Time  `gorm:"not null" json:"created_at"`
}
