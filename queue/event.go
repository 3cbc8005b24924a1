// Package queue publishes domain events to RabbitMQ so downstream consumers
// (loyalty, accounting, notification senders) can react without being part
// of the request path.
package queue

import "time"

// Routing keys; each is also the name of a durable queue.
const (
	TransactionPosted        = "transaction.posted"
	ReservationAutoCancelled = "reservation.auto_cancelled"
	SessionClosed            = "session.closed"
)

// Queues lists every routing key declared on connect.
var Queues = []string{TransactionPosted, ReservationAutoCancelled, SessionClosed}

type TransactionPostedEvent struct {
	OrderID       uint      `json:"order_id"`
	InvoiceNumber string    `json:"invoice_number"`
	SessionID     *uint     `json:"session_id,omitempty"`
	MemberID      *uint     `json:"member_id,omitempty"`
	Total         int64     `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	PointsEarned  int64     `json:"points_earned"`
	PostedAt      time.Time `json:"posted_at"`
}

type ReservationAutoCancelledEvent struct {
	ReservationID uint      `json:"reservation_id"`
	CustomerName  string    `json:"customer_name"`
	Phone         string    `json:"phone"`
	BookingDate   string    `json:"booking_date"`
	BookingTime   string    `json:"booking_time"`
	MinutesPast   int       `json:"minutes_past"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

type SessionClosedEvent struct {
	SessionID      uint      `json:"session_id"`
	TableID        uint      `json:"table_id"`
	OrderID        uint      `json:"order_id"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	TableBill      int64     `json:"table_bill"`
	ClosedAt       time.Time `json:"closed_at"`
}
