// Package dto holds the request bodies and query filters of the HTTP API.
// Validation runs through gin's binding tags.
package dto

import (
	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/models"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=ADMIN MANAGER CASHIER"`
}

type CreateTableRequest struct {
	Number     string           `json:"number" binding:"required,max=50"`
	Type       models.TableType `json:"type" binding:"omitempty,oneof=REGULAR VIP SNOOKER"`
	HourlyRate int64            `json:"hourly_rate" binding:"required,gt=0"`
}

type UpdateTableRequest struct {
	Number     *string             `json:"number" binding:"omitempty,max=50"`
	Type       *models.TableType   `json:"type" binding:"omitempty,oneof=REGULAR VIP SNOOKER"`
	HourlyRate *int64              `json:"hourly_rate" binding:"omitempty,gt=0"`
	Status     *models.TableStatus `json:"status" binding:"omitempty,oneof=AVAILABLE BOOKED CLEANING MAINTENANCE"`
}

type StartSessionRequest struct {
	CustomerName string `json:"customer_name" binding:"max=255"`
	MemberID     *uint  `json:"member_id"`
	// PackageHours > 0 sells a fixed-duration package instead of an open bill.
	PackageHours int `json:"package_hours" binding:"omitempty,min=1,max=24"`
}

type TransferRequest struct {
	FromTableID uint `json:"from_table_id" binding:"required"`
	ToTableID   uint `json:"to_table_id" binding:"required"`
}

type AddItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type DiscountRequest struct {
	Type  billing.DiscountKind `json:"type" binding:"required,oneof=percentage fixed"`
	Value int64                `json:"value" binding:"min=0"`
}

func (d *DiscountRequest) Discount() billing.Discount {
	if d == nil {
		return billing.Discount{}
	}
	return billing.Discount{Kind: d.Type, Value: d.Value}
}

type PaymentSplit struct {
	Method string `json:"method" binding:"required,oneof=CASH QRIS CARD TRANSFER WALLET"`
	Amount int64  `json:"amount" binding:"min=0"`
}

func Tenders(splits []PaymentSplit) []billing.Tender {
	out := make([]billing.Tender, 0, len(splits))
	for _, s := range splits {
		out = append(out, billing.Tender{Method: s.Method, Amount: s.Amount})
	}
	return out
}

// CheckoutRequest stops the session on a table and settles its bill.
type CheckoutRequest struct {
	SplitMode        billing.SplitMode `json:"split_mode" binding:"omitempty,oneof=none by_item by_person"`
	IncludeTableBill bool              `json:"include_table_bill"`
	SelectedItemIDs  []uint            `json:"selected_item_ids"`
	Persons          int               `json:"persons" binding:"min=0"`
	Discount         *DiscountRequest  `json:"discount"`
	PointsRedeemed   int64             `json:"points_redeemed" binding:"min=0"`
	MemberID         *uint             `json:"member_id"`
	Payments         []PaymentSplit    `json:"payments" binding:"required,min=1,max=3,dive"`
}

type CreateReservationRequest struct {
	CustomerName string                 `json:"customer_name" binding:"required,max=255"`
	Phone        string                 `json:"phone" binding:"required,max=30"`
	Kind         models.ReservationKind `json:"kind" binding:"omitempty,oneof=SCHEDULED WALK_IN"`
	BookingDate  string                 `json:"booking_date" binding:"omitempty,datetime=2006-01-02"`
	BookingTime  string                 `json:"booking_time" binding:"omitempty,datetime=15:04"`
	PartySize    int                    `json:"party_size" binding:"omitempty,min=1,max=20"`
	TableType    models.TableType       `json:"table_type" binding:"omitempty,oneof=REGULAR VIP SNOOKER"`
	TableID      *uint                  `json:"table_id"`
	Notes        string                 `json:"notes"`
}

type CancelReservationRequest struct {
	Reason string `json:"reason" binding:"max=100"`
}

type ConfirmStartRequest struct {
	ReservationID uint `json:"reservation_id" binding:"required"`
	TableID       uint `json:"table_id" binding:"required"`
}

type ReservationFilter struct {
	Date   string `form:"date" binding:"omitempty,datetime=2006-01-02"`
	Status string `form:"status" binding:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	Kind   string `form:"kind" binding:"omitempty,oneof=SCHEDULED WALK_IN"`
}

type TransactionItem struct {
	Type      string `json:"type" binding:"required,oneof=TABLE_BILL PRODUCT"`
	ProductID uint   `json:"product_id"`
	Name      string `json:"name" binding:"max=255"`
	UnitPrice int64  `json:"unit_price" binding:"min=0"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PostTransactionRequest records a sale outside the table checkout flow.
// Product prices always come from the catalog.
type PostTransactionRequest struct {
	MemberID       *uint             `json:"member_id"`
	CustomerName   string            `json:"customer_name" binding:"max=255"`
	SessionID      *uint             `json:"session_id"`
	PaymentMethod  string            `json:"payment_method" binding:"required,oneof=CASH QRIS CARD TRANSFER WALLET"`
	Items          []TransactionItem `json:"items" binding:"required,min=1,dive"`
	PointsRedeemed int64             `json:"points_redeemed" binding:"min=0"`
	Discount       *DiscountRequest  `json:"discount"`
	Payments       []PaymentSplit    `json:"payments" binding:"omitempty,max=3,dive"`
}

type TransactionFilter struct {
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search        string `form:"search"`
	DateFrom      string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo        string `form:"date_to" binding:"omitempty,datetime=2006-01-02"`
	PaymentMethod string `form:"payment_method" binding:"omitempty,oneof=CASH QRIS CARD TRANSFER WALLET SPLIT"`
}

type CreateMemberRequest struct {
	Code  string            `json:"code" binding:"max=30"`
	Name  string            `json:"name" binding:"required,max=255"`
	Phone string            `json:"phone" binding:"max=30"`
	Tier  models.MemberTier `json:"tier" binding:"omitempty,oneof=BRONZE SILVER GOLD"`
}

type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

type CreateProductRequest struct {
	CategoryID uint   `json:"category_id" binding:"required"`
	Name       string `json:"name" binding:"required,max=255"`
	Price      int64  `json:"price" binding:"min=0"`
	Stock      int    `json:"stock" binding:"min=0"`
	Active     *bool  `json:"active"`
}

type UpdateProductRequest struct {
	CategoryID *uint   `json:"category_id"`
	Name       *string `json:"name" binding:"omitempty,max=255"`
	Price      *int64  `json:"price" binding:"omitempty,min=0"`
	Active     *bool   `json:"active"`
}

type StockAdjustRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type OpenShiftRequest struct {
	OpeningCash int64 `json:"opening_cash" binding:"min=0"`
}

type CloseShiftRequest struct {
	CountedCash int64 `json:"counted_cash" binding:"min=0"`
}
