package models

import (
	"time"
)

type CleaningLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CleanerID uint      `gorm:"not null" json:"cleaner_id"`
	Cleaner   User      `gorm:"foreignKey:CleanerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	TableID   uint      `gorm:"not null;index" json:"table_id"`
	Table     Table     `gorm:"foreignKey:TableID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
	SessionID *uint     `json:"session_id,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
