package models

import "time"

type TableType string

const (
	TableRegular TableType = "REGULAR"
	TableVIP     TableType = "VIP"
	TableSnooker TableType = "SNOOKER"
)

type TableStatus string

const (
	TableAvailable   TableStatus = "AVAILABLE"
	TableActive      TableStatus = "ACTIVE"
	TableBooked      TableStatus = "BOOKED"
	TableCleaning    TableStatus = "CLEANING"
	TableMaintenance TableStatus = "MAINTENANCE"
)

type Table struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	Number     string      `gorm:"type:varchar(50);not null;uniqueIndex" json:"number"`
	Type       TableType   `gorm:"type:varchar(20);not null;default:'REGULAR'" json:"type"`
	HourlyRate int64       `gorm:"not null" json:"hourly_rate"`
	Status     TableStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"status"`
	CreatedAt  time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null" json:"updated_at"`
}

// Startable reports whether a new session may be opened on the table.
func (t Table) Startable() bool {
	return t.Status == TableAvailable || t.Status == TableBooked
}

func ValidTableType(t TableType) bool {
	switch t {
	case TableRegular, TableVIP, TableSnooker:
		return true
	}
	return false
}

func ValidTableStatus(s TableStatus) bool {
	switch s {
	case TableAvailable, TableActive, TableBooked, TableCleaning, TableMaintenance:
		return true
	}
	return false
}
