package services

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/billing"
)

// DomainError is a business-rule failure reported to the caller as-is.
type DomainError struct {
	Code    string
	Message string
	Status  int
}

func (e *DomainError) Error() string {
	return e.Message
}

func notFound(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusNotFound}
}

func precondition(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, Status: http.StatusBadRequest}
}

var (
	ErrTableNotFound       = notFound("TABLE_NOT_FOUND", "table not found")
	ErrSessionNotFound     = notFound("SESSION_NOT_FOUND", "table has no active session")
	ErrItemNotFound        = notFound("ITEM_NOT_FOUND", "session item not found")
	ErrReservationNotFound = notFound("RESERVATION_NOT_FOUND", "reservation not found")
	ErrOrderNotFound       = notFound("ORDER_NOT_FOUND", "transaction not found")
	ErrProductNotFound     = notFound("PRODUCT_NOT_FOUND", "product not found")
	ErrMemberNotFound      = notFound("MEMBER_NOT_FOUND", "member not found")
	ErrShiftNotFound       = notFound("SHIFT_NOT_FOUND", "shift not found")

	ErrTableUnavailable        = precondition("TABLE_UNAVAILABLE", "table is not available")
	ErrTableOccupied           = precondition("TABLE_OCCUPIED", "table has an open session")
	ErrTableExists             = precondition("TABLE_EXISTS", "table number already exists")
	ErrTableNotCleaning        = precondition("TABLE_NOT_CLEANING", "table is not waiting for cleaning")
	ErrInvalidTableStatus      = precondition("INVALID_TABLE_STATUS", "status cannot be set manually")
	ErrSameTable               = precondition("SAME_TABLE", "source and destination table are the same")
	ErrSessionNotRunning       = precondition("SESSION_NOT_RUNNING", "session is not running")
	ErrSessionNotPaused        = precondition("SESSION_NOT_PAUSED", "session is not paused")
	ErrItemSettled             = precondition("ITEM_SETTLED", "item has already been paid")
	ErrReservationNotPending   = precondition("RESERVATION_NOT_PENDING", "reservation is not pending")
	ErrReservationNotConfirmed = precondition("RESERVATION_NOT_CONFIRMED", "reservation is not confirmed")
	ErrReservationClosed       = precondition("RESERVATION_CLOSED", "reservation is already completed or cancelled")
	ErrInvalidBooking          = precondition("INVALID_BOOKING", "scheduled reservations need a booking date and time")
	ErrProductInactive         = precondition("PRODUCT_INACTIVE", "product is not available for sale")
	ErrInsufficientStock       = precondition("INSUFFICIENT_STOCK", "insufficient stock")
	ErrInsufficientPoints      = precondition("INSUFFICIENT_POINTS", "insufficient points")
	ErrInsufficientWallet      = precondition("INSUFFICIENT_WALLET", "insufficient wallet balance")
	ErrWalletOverpaid          = precondition("WALLET_OVERPAID", "wallet payment exceeds the amount left unpaid")
	ErrInsufficientPayment     = precondition("INSUFFICIENT_PAYMENT", "payment does not cover the bill")
	ErrMemberRequired          = precondition("MEMBER_REQUIRED", "a member is required for points or wallet payment")
	ErrEmptyTransaction        = precondition("EMPTY_TRANSACTION", "transaction has no items")
	ErrInvalidItem             = precondition("INVALID_ITEM", "invalid transaction item")
	ErrInvalidPaymentMethod    = precondition("INVALID_PAYMENT_METHOD", "invalid payment method")
	ErrShiftAlreadyOpen        = precondition("SHIFT_ALREADY_OPEN", "cashier already has an open shift")
	ErrShiftClosed             = precondition("SHIFT_CLOSED", "shift is already closed")
)

// checkoutError converts a composer validation error into a 400.
func checkoutError(err error) error {
	for _, known := range []error{
		billing.ErrUnknownSplit, billing.ErrInvalidPersons, billing.ErrUnknownLine,
		billing.ErrNothingSelected, billing.ErrTableBillPaid, billing.ErrInvalidDiscount,
		billing.ErrInvalidPoints, billing.ErrInvalidTender, billing.ErrTooManyTenders,
	} {
		if errors.Is(err, known) {
			return precondition("INVALID_CHECKOUT", err.Error())
		}
	}
	return err
}

// orNotFound maps gorm.ErrRecordNotFound to nf and passes other errors through.
func orNotFound(err error, nf *DomainError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return err
}
