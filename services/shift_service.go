package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/utils"
)

type MethodTotal struct {
	Method string `json:"method"`
	Count  int64  `json:"count"`
	Amount int64  `json:"amount"`
}

// ZReport is the end-of-shift summary of every order posted in a shift.
type ZReport struct {
	Shift            models.Shift  `json:"shift"`
	TransactionCount int64         `json:"transaction_count"`
	GrossSales       int64         `json:"gross_sales"`
	Discounts        int64         `json:"discounts"`
	PointsDiscount   int64         `json:"points_discount"`
	Tax              int64         `json:"tax"`
	NetSales         int64         `json:"net_sales"`
	CashTendered     int64         `json:"cash_tendered"`
	ChangeGiven      int64         `json:"change_given"`
	ExpectedCash     int64         `json:"expected_cash"`
	ByMethod         []MethodTotal `json:"by_method"`
}

type ShiftService struct {
	db   *gorm.DB
	opts Options
}

func NewShiftService(db *gorm.DB, opts Options) *ShiftService {
	return &ShiftService{db: db, opts: opts.withDefaults()}
}

// Open starts a cash drawer period. A cashier has at most one open shift.
func (s *ShiftService) Open(ctx context.Context, userID uint, openingCash int64) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Shift{}).
			Where("user_id = ? AND status = ?", userID, models.ShiftOpen).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrShiftAlreadyOpen
		}

		now := s.opts.clock()
		suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
		shift = models.Shift{
			Reference:   fmt.Sprintf("SHF-%s-%s", now.Format("20060102"), suffix),
			UserID:      userID,
			OpenedAt:    now,
			OpeningCash: openingCash,
			Status:      models.ShiftOpen,
		}
		if err := tx.Omit(clause.Associations).Create(&shift).Error; err != nil {
			return fmt.Errorf("failed to open shift: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Shift %s opened by user %d", shift.Reference, userID)
	return &shift, nil
}

func (s *ShiftService) Current(ctx context.Context, userID uint) (*models.Shift, error) {
	var shift models.Shift
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ShiftOpen).
		Order("id DESC").
		First(&shift).Error
	if err != nil {
		return nil, orNotFound(err, ErrShiftNotFound)
	}
	return &shift, nil
}

// Close records the counted cash. Expected cash is the opening float plus
// cash tendered minus change given in the shift.
func (s *ShiftService) Close(ctx context.Context, shiftID uint, countedCash int64) (*ZReport, error) {
	var report *ZReport
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var shift models.Shift
		if err := tx.First(&shift, shiftID).Error; err != nil {
			return orNotFound(err, ErrShiftNotFound)
		}
		if shift.Status != models.ShiftOpen {
			return ErrShiftClosed
		}

		var err error
		if report, err = summarize(tx, shift); err != nil {
			return err
		}

		now := s.opts.clock()
		res := tx.Model(&models.Shift{}).
			Where("id = ? AND status = ?", shift.ID, models.ShiftOpen).
			Updates(map[string]interface{}{
				"status":        models.ShiftClosed,
				"closed_at":     now,
				"expected_cash": report.ExpectedCash,
				"counted_cash":  countedCash,
				"difference":    countedCash - report.ExpectedCash,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to close shift: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrShiftClosed
		}

		return tx.Preload("User").First(&report.Shift, shift.ID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Shift %s closed, expected %s counted %s",
		report.Shift.Reference, utils.FormatRupiah(report.ExpectedCash), utils.FormatRupiah(countedCash))
	return report, nil
}

func (s *ShiftService) ZReport(ctx context.Context, shiftID uint) (*ZReport, error) {
	db := s.db.WithContext(ctx)
	var shift models.Shift
	if err := db.Preload("User").First(&shift, shiftID).Error; err != nil {
		return nil, orNotFound(err, ErrShiftNotFound)
	}
	return summarize(db, shift)
}

func summarize(db *gorm.DB, shift models.Shift) (*ZReport, error) {
	var agg struct {
		Count          int64
		Subtotal       int64
		Discount       int64
		PointsDiscount int64
		Tax            int64
		Total          int64
		ChangeAmount   int64
	}
	err := db.Model(&models.Order{}).
		Select(`COUNT(*) AS count,
			COALESCE(SUM(subtotal), 0) AS subtotal,
			COALESCE(SUM(discount), 0) AS discount,
			COALESCE(SUM(points_discount), 0) AS points_discount,
			COALESCE(SUM(tax), 0) AS tax,
			COALESCE(SUM(total), 0) AS total,
			COALESCE(SUM(change_amount), 0) AS change_amount`).
		Where("shift_id = ?", shift.ID).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize shift: %w", err)
	}

	byMethod := []MethodTotal{}
	err = db.Table("payments").
		Select("payments.method AS method, COUNT(*) AS count, COALESCE(SUM(payments.amount), 0) AS amount").
		Joins("JOIN orders ON orders.id = payments.order_id").
		Where("orders.shift_id = ?", shift.ID).
		Group("payments.method").
		Order("payments.method").
		Scan(&byMethod).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize payments: %w", err)
	}

	report := &ZReport{
		Shift:            shift,
		TransactionCount: agg.Count,
		GrossSales:       agg.Subtotal,
		Discounts:        agg.Discount,
		PointsDiscount:   agg.PointsDiscount,
		Tax:              agg.Tax,
		NetSales:         agg.Total,
		ChangeGiven:      agg.ChangeAmount,
		ByMethod:         byMethod,
	}
	for _, m := range byMethod {
		if m.Method == models.MethodCash {
			report.CashTendered = m.Amount
		}
	}
	report.ExpectedCash = shift.OpeningCash + report.CashTendered - report.ChangeGiven
	return report, nil
}
