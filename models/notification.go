package models

import (
	"time"
)

const (
	NotifAutoCancelled  = "auto_cancelled"
	NotifPackageWarning = "package_warning"
	NotifPackageExpired = "package_expired"
)

type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Type          string    `gorm:"type:varchar(30);not null;index" json:"type"`
	Title         string    `gorm:"type:varchar(100)" json:"title"`
	Message       string    `gorm:"type:text;not null" json:"message"`
	ReservationID *uint     `json:"reservation_id,omitempty"`
	SessionID     *uint     `json:"session_id,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
