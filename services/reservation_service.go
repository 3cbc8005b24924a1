package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/utils"
)

type AlertType string

const (
	AlertUpcoming            AlertType = "upcoming"
	AlertWaitingConfirmation AlertType = "waiting_confirmation"
	AlertAutoCancelled       AlertType = "auto_cancelled"
)

// NoShowReason is stored on reservations cancelled by the sweep.
const NoShowReason = "no-show"

type Alert struct {
	Type              AlertType          `json:"type"`
	Message           string             `json:"message"`
	Reservation       models.Reservation `json:"reservation"`
	MinutesUntilStart *int               `json:"minutes_until_start,omitempty"`
	MinutesPast       *int               `json:"minutes_past,omitempty"`
}

type CheckResult struct {
	Alerts         []Alert `json:"alerts"`
	CancelledCount int     `json:"cancelled_count"`
}

// ReservationService handles bookings, the no-show sweep and starting a
// table from a confirmed booking.
type ReservationService struct {
	db     *gorm.DB
	opts   Options
	tables *TableService
}

func NewReservationService(db *gorm.DB, tables *TableService, opts Options) *ReservationService {
	return &ReservationService{db: db, opts: opts.withDefaults(), tables: tables}
}

// classify maps the minutes until a booking onto an alert. Past the grace
// period the booking is a no-show and must be cancelled.
func classify(minutesDiff, upcomingWindow, grace int) (AlertType, bool) {
	switch {
	case minutesDiff > 0 && minutesDiff <= upcomingWindow:
		return AlertUpcoming, true
	case minutesDiff <= 0 && minutesDiff > -grace:
		return AlertWaitingConfirmation, true
	case minutesDiff <= -grace:
		return AlertAutoCancelled, true
	}
	return "", false
}

// minutesUntil counts whole minutes between now and at, truncated toward
// zero: 14m59s past is -14, so cancellation starts at a full grace period.
func minutesUntil(at, now time.Time) int {
	return int(at.Sub(now) / time.Minute)
}

func (s *ReservationService) Create(ctx context.Context, req dto.CreateReservationRequest) (*models.Reservation, error) {
	now := s.opts.clock()
	res := models.Reservation{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        strings.TrimSpace(req.Phone),
		Kind:         req.Kind,
		BookingDate:  req.BookingDate,
		BookingTime:  req.BookingTime,
		PartySize:    req.PartySize,
		TableType:    req.TableType,
		TableID:      req.TableID,
		Status:       models.ReservationPending,
		Notes:        req.Notes,
	}
	if res.Kind == "" {
		res.Kind = models.ReservationScheduled
	}
	if res.PartySize == 0 {
		res.PartySize = 1
	}

	switch res.Kind {
	case models.ReservationWalkIn:
		// The customer is already here: queue for today, now.
		res.BookingDate = now.Format(models.DateLayout)
		res.BookingTime = now.Format(models.TimeLayout)
		res.Status = models.ReservationConfirmed
	default:
		if res.BookingDate == "" || res.BookingTime == "" {
			return nil, ErrInvalidBooking
		}
		if _, err := res.BookingAt(s.opts.Location); err != nil {
			return nil, ErrInvalidBooking
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if res.TableID != nil {
			var table models.Table
			if err := tx.First(&table, *res.TableID).Error; err != nil {
				return orNotFound(err, ErrTableNotFound)
			}
			if res.TableType == "" {
				res.TableType = table.Type
			}
		}
		if err := tx.Omit("Table").Create(&res).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		if res.Status == models.ReservationConfirmed {
			return s.holdTable(tx, &res, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventReservationUpdate, res)
	return &res, nil
}

// holdTable marks the assigned table BOOKED for a confirmed booking today.
func (s *ReservationService) holdTable(tx *gorm.DB, res *models.Reservation, now time.Time) error {
	if res.TableID == nil || res.Kind != models.ReservationScheduled || res.BookingDate != now.Format(models.DateLayout) {
		return nil
	}
	return tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", *res.TableID, models.TableAvailable).
		Update("status", models.TableBooked).Error
}

// releaseTable reverts a BOOKED table held by a reservation that will not arrive.
func releaseTable(tx *gorm.DB, tableID *uint) error {
	if tableID == nil {
		return nil
	}
	return tx.Model(&models.Table{}).
		Where("id = ? AND status = ?", *tableID, models.TableBooked).
		Update("status", models.TableAvailable).Error
}

func (s *ReservationService) Confirm(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return orNotFound(err, ErrReservationNotFound)
		}
		result := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", id, models.ReservationPending).
			Update("status", models.ReservationConfirmed)
		if result.Error != nil {
			return fmt.Errorf("failed to confirm reservation: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrReservationNotPending
		}
		res.Status = models.ReservationConfirmed
		return s.holdTable(tx, &res, s.opts.clock())
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventReservationUpdate, res)
	return &res, nil
}

func (s *ReservationService) Cancel(ctx context.Context, id uint, reason string) (*models.Reservation, error) {
	var res models.Reservation
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return orNotFound(err, ErrReservationNotFound)
		}
		result := tx.Model(&models.Reservation{}).
			Where("id = ? AND status IN ?", id, []models.ReservationStatus{models.ReservationPending, models.ReservationConfirmed}).
			Updates(map[string]interface{}{"status": models.ReservationCancelled, "cancel_reason": reason})
		if result.Error != nil {
			return fmt.Errorf("failed to cancel reservation: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrReservationClosed
		}
		res.Status = models.ReservationCancelled
		res.CancelReason = reason
		return releaseTable(tx, res.TableID)
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventReservationUpdate, res)
	return &res, nil
}

func (s *ReservationService) List(ctx context.Context, filter dto.ReservationFilter) ([]models.Reservation, error) {
	query := s.db.WithContext(ctx).Preload("Table")
	if filter.Date != "" {
		query = query.Where("booking_date = ?", filter.Date)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}

	reservations := []models.Reservation{}
	if err := query.Order("booking_date ASC, booking_time ASC, id ASC").Find(&reservations).Error; err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// Check sweeps confirmed scheduled bookings up to today. Bookings inside the
// upcoming window or the grace period produce alerts; bookings past the
// grace period are cancelled in one batch. Walk-ins are never swept.
func (s *ReservationService) Check(ctx context.Context) (*CheckResult, error) {
	now := s.opts.clock()
	today := now.Format(models.DateLayout)
	db := s.db.WithContext(ctx)

	var candidates []models.Reservation
	err := db.Preload("Table").
		Where("status = ? AND kind = ? AND booking_date <= ?", models.ReservationConfirmed, models.ReservationScheduled, today).
		Order("booking_date ASC, booking_time ASC").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load reservations: %w", err)
	}

	result := &CheckResult{Alerts: []Alert{}}
	var noShows []Alert
	for _, r := range candidates {
		at, err := r.BookingAt(s.opts.Location)
		if err != nil {
			utils.ErrorLogger.Errorf("reservation %d has an invalid booking time %q %q", r.ID, r.BookingDate, r.BookingTime)
			continue
		}
		diff := minutesUntil(at, now)
		kind, ok := classify(diff, s.opts.UpcomingWindowMinutes, s.opts.NoShowGraceMinutes)
		if !ok {
			continue
		}

		alert := Alert{Type: kind, Reservation: r}
		switch kind {
		case AlertUpcoming:
			minutes := diff
			alert.MinutesUntilStart = &minutes
			alert.Message = fmt.Sprintf("%s is due in %d minutes", r.CustomerName, diff)
			result.Alerts = append(result.Alerts, alert)
		case AlertWaitingConfirmation:
			past := -diff
			alert.MinutesPast = &past
			alert.Message = fmt.Sprintf("%s is %d minutes late, waiting for arrival", r.CustomerName, past)
			result.Alerts = append(result.Alerts, alert)
		case AlertAutoCancelled:
			past := -diff
			alert.MinutesPast = &past
			alert.Message = fmt.Sprintf("%s did not arrive, reservation cancelled", r.CustomerName)
			alert.Reservation.Status = models.ReservationCancelled
			alert.Reservation.CancelReason = NoShowReason
			noShows = append(noShows, alert)
		}
	}

	if len(noShows) == 0 {
		return result, nil
	}

	var cancelled []Alert
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, alert := range noShows {
			r := alert.Reservation
			res := tx.Model(&models.Reservation{}).
				Where("id = ? AND status = ?", r.ID, models.ReservationConfirmed).
				Updates(map[string]interface{}{"status": models.ReservationCancelled, "cancel_reason": NoShowReason})
			if res.Error != nil {
				return fmt.Errorf("failed to cancel reservation %d: %w", r.ID, res.Error)
			}
			// Started or cancelled by someone else since it was read.
			if res.RowsAffected != 1 {
				continue
			}
			if err := releaseTable(tx, r.TableID); err != nil {
				return err
			}
			n := models.Notification{
				Type:          models.NotifAutoCancelled,
				Title:         "Reservation cancelled",
				Message:       alert.Message,
				ReservationID: &r.ID,
				CreatedAt:     now,
			}
			if err := tx.Create(&n).Error; err != nil {
				return fmt.Errorf("failed to save notification: %w", err)
			}
			cancelled = append(cancelled, alert)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Alerts = append(result.Alerts, cancelled...)
	result.CancelledCount = len(cancelled)
	utils.InfoLogger.Infof("Auto-cancelled %d no-show reservations", len(cancelled))

	for _, alert := range cancelled {
		s.opts.Hub.Broadcast(floor.EventReservationAlert, alert)
		s.opts.publish(ctx, queue.ReservationAutoCancelled, queue.ReservationAutoCancelledEvent{
			ReservationID: alert.Reservation.ID,
			CustomerName:  alert.Reservation.CustomerName,
			Phone:         alert.Reservation.Phone,
			BookingDate:   alert.Reservation.BookingDate,
			BookingTime:   alert.Reservation.BookingTime,
			MinutesPast:   *alert.MinutesPast,
			CancelledAt:   now,
		})
	}
	return result, nil
}

// ConfirmStart completes a confirmed reservation and opens a session on the
// chosen table in the same store transaction.
func (s *ReservationService) ConfirmStart(ctx context.Context, req dto.ConfirmStartRequest) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		if err := tx.First(&res, req.ReservationID).Error; err != nil {
			return orNotFound(err, ErrReservationNotFound)
		}
		if res.Status != models.ReservationConfirmed {
			return ErrReservationNotConfirmed
		}

		result := tx.Model(&models.Reservation{}).
			Where("id = ? AND status = ?", res.ID, models.ReservationConfirmed).
			Updates(map[string]interface{}{"status": models.ReservationCompleted, "table_id": req.TableID})
		if result.Error != nil {
			return fmt.Errorf("failed to complete reservation: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return ErrReservationNotConfirmed
		}

		// A different table was chosen; free the one held for this booking.
		if res.TableID != nil && *res.TableID != req.TableID {
			if err := releaseTable(tx, res.TableID); err != nil {
				return err
			}
		}

		var err error
		session, err = s.tables.start(tx, req.TableID, startParams{
			CustomerName:  res.CustomerName,
			ReservationID: &res.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.tables.afterStart(session)
	s.opts.Hub.Broadcast(floor.EventReservationUpdate, map[string]interface{}{
		"id":     req.ReservationID,
		"status": models.ReservationCompleted,
	})
	return session, nil
}
