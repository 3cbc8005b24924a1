package models

import "time"

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCompleted ReservationStatus = "COMPLETED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// ReservationKind separates scheduled bookings from walk-in queue entries.
type ReservationKind string

const (
	ReservationScheduled ReservationKind = "SCHEDULED"
	ReservationWalkIn    ReservationKind = "WALK_IN"
)

type Reservation struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	CustomerName string            `gorm:"type:varchar(255);not null" json:"customer_name"`
	Phone        string            `gorm:"type:varchar(30);not null" json:"phone"`
	Kind         ReservationKind   `gorm:"type:varchar(20);not null;default:'SCHEDULED'" json:"kind"`
	BookingDate  string            `gorm:"type:varchar(10);not null;index" json:"booking_date"`
	BookingTime  string            `gorm:"type:varchar(5);not null" json:"booking_time"`
	PartySize    int               `gorm:"not null;default:1" json:"party_size"`
	TableType    TableType         `gorm:"type:varchar(20)" json:"table_type"`
	TableID      *uint             `gorm:"index" json:"table_id,omitempty"`
	Table        *Table            `gorm:"foreignKey:TableID" json:"table,omitempty"`
	Status       ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes        string            `gorm:"type:text" json:"notes"`
	CancelReason string            `gorm:"type:varchar(100)" json:"cancel_reason,omitempty"`
	CreatedAt    time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null" json:"updated_at"`
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// BookingAt merges the booking date (YYYY-MM-DD) with its time-of-day (HH:MM) in loc.
func (r Reservation) BookingAt(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, r.BookingDate+" "+r.BookingTime, loc)
}
