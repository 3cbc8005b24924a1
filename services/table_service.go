package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/utils"
)

var (
	runningSessions = []models.SessionStatus{models.SessionOpen, models.SessionPaused}
	startableTables = []models.TableStatus{models.TableAvailable, models.TableBooked}
)

// TableService runs the table lifecycle: start, pause, resume, transfer,
// F&B lines, checkout and cleaning.
type TableService struct {
	db           *gorm.DB
	opts         Options
	transactions *TransactionService
}

func NewTableService(db *gorm.DB, transactions *TransactionService, opts Options) *TableService {
	return &TableService{db: db, opts: opts.withDefaults(), transactions: transactions}
}

// LiveTable is a table with the live state of its running session.
type LiveTable struct {
	Table            models.Table     `json:"table"`
	Session          *models.Session  `json:"session,omitempty"`
	ElapsedSeconds   int64            `json:"elapsed_seconds"`
	RemainingSeconds int64            `json:"remaining_seconds"`
	CurrentBill      int64            `json:"current_bill"`
	ItemsTotal       int64            `json:"items_total"`
	Warning          bool             `json:"warning"`
	Expired          bool             `json:"expired"`
	Alerts           []billing.Signal `json:"alerts,omitempty"`
}

type CheckoutResult struct {
	Bill    billing.Bill    `json:"bill"`
	Order   *models.Order   `json:"order"`
	Session *models.Session `json:"session"`
}

type startParams struct {
	CustomerName  string
	MemberID      *uint
	ReservationID *uint
	PackageHours  int
}

func sessionClock(s models.Session) billing.Clock {
	return billing.Clock{
		Start:          s.StartTime,
		PausedAt:       s.PausedAt,
		PausedSeconds:  s.PausedSeconds,
		PackageSeconds: s.PackageSeconds,
	}
}

// activeSession loads the running session of a table with its unsettled lines.
func activeSession(tx *gorm.DB, tableID uint) (*models.Session, error) {
	var session models.Session
	err := tx.Preload("Items", "settled_order_id IS NULL").
		Where("table_id = ? AND status IN ?", tableID, runningSessions).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		return nil, orNotFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	tables := []models.Table{}
	if err := s.db.WithContext(ctx).Order("number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	var table models.Table
	if err := s.db.WithContext(ctx).First(&table, id).Error; err != nil {
		return nil, orNotFound(err, ErrTableNotFound)
	}
	return &table, nil
}

func (s *TableService) Create(ctx context.Context, req dto.CreateTableRequest) (*models.Table, error) {
	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Table{}).Where("number = ?", req.Number).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrTableExists
	}

	table := models.Table{
		Number:     req.Number,
		Type:       req.Type,
		HourlyRate: req.HourlyRate,
		Status:     models.TableAvailable,
	}
	if table.Type == "" {
		table.Type = models.TableRegular
	}
	if err := db.Create(&table).Error; err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	s.opts.Hub.Broadcast(floor.EventTableCreate, table)
	return &table, nil
}

// Update edits a table. The status can be set by hand to anything except
// ACTIVE, and not while a session is running on the table. A rate change
// applies to sessions started afterwards.
func (s *TableService) Update(ctx context.Context, id uint, req dto.UpdateTableRequest) (*models.Table, error) {
	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, id).Error; err != nil {
			return orNotFound(err, ErrTableNotFound)
		}

		updates := map[string]interface{}{}
		if req.Number != nil && *req.Number != table.Number {
			var count int64
			if err := tx.Model(&models.Table{}).Where("number = ? AND id <> ?", *req.Number, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return ErrTableExists
			}
			updates["number"] = *req.Number
		}
		if req.Type != nil {
			updates["type"] = *req.Type
		}
		if req.HourlyRate != nil {
			updates["hourly_rate"] = *req.HourlyRate
		}

		query := tx.Model(&models.Table{}).Where("id = ?", id)
		if req.Status != nil {
			if *req.Status == models.TableActive || !models.ValidTableStatus(*req.Status) {
				return ErrInvalidTableStatus
			}
			updates["status"] = *req.Status
			query = query.Where("status <> ?", models.TableActive)
		}
		if len(updates) == 0 {
			return nil
		}

		res := query.Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to update table: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrTableOccupied
		}
		return tx.First(&table, id).Error
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventTableUpdate, table)
	return &table, nil
}

// Start opens a session on an AVAILABLE or BOOKED table.
func (s *TableService) Start(ctx context.Context, tableID uint, req dto.StartSessionRequest) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		session, err = s.start(tx, tableID, startParams{
			CustomerName: req.CustomerName,
			MemberID:     req.MemberID,
			PackageHours: req.PackageHours,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterStart(session)
	return session, nil
}

// start claims the table with a conditional update; of two concurrent
// starts only one affects the row.
func (s *TableService) start(tx *gorm.DB, tableID uint, p startParams) (*models.Session, error) {
	var table models.Table
	if err := tx.First(&table, tableID).Error; err != nil {
		return nil, orNotFound(err, ErrTableNotFound)
	}
	if !table.Startable() {
		return nil, ErrTableUnavailable
	}
	if p.MemberID != nil {
		var member models.Member
		if err := tx.Select("id").First(&member, *p.MemberID).Error; err != nil {
			return nil, orNotFound(err, ErrMemberNotFound)
		}
	}

	res := tx.Model(&models.Table{}).
		Where("id = ? AND status IN ?", table.ID, startableTables).
		Update("status", models.TableActive)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to claim table: %w", res.Error)
	}
	if res.RowsAffected != 1 {
		return nil, ErrTableUnavailable
	}
	table.Status = models.TableActive

	now := s.opts.clock()
	session := models.Session{
		TableID:       table.ID,
		StartTime:     now,
		HourlyRate:    table.HourlyRate,
		CustomerName:  p.CustomerName,
		MemberID:      p.MemberID,
		ReservationID: p.ReservationID,
		Status:        models.SessionOpen,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if p.PackageHours > 0 {
		end := now.Add(time.Duration(p.PackageHours) * time.Hour)
		session.EndTime = &end
		session.PackageSeconds = billing.PackageSeconds(now, end)
	}
	if err := tx.Omit(clause.Associations).Create(&session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	session.Table = table
	session.Items = []models.SessionItem{}
	return &session, nil
}

func (s *TableService) afterStart(session *models.Session) {
	utils.InfoLogger.Infof("Session %d started on table %s", session.ID, session.Table.Number)
	s.opts.Hub.Broadcast(floor.EventSessionStarted, session)
	s.opts.Hub.Broadcast(floor.EventTableUpdate, session.Table)
}

// Pause freezes the session clock.
func (s *TableService) Pause(ctx context.Context, tableID uint) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = activeSession(tx, tableID); err != nil {
			return err
		}
		if session.Status != models.SessionOpen {
			return ErrSessionNotRunning
		}

		now := s.opts.clock()
		res := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", session.ID, models.SessionOpen).
			Updates(map[string]interface{}{"status": models.SessionPaused, "paused_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to pause session: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrSessionNotRunning
		}
		session.Status = models.SessionPaused
		session.PausedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventSessionUpdate, session)
	return session, nil
}

// Resume restarts the clock. The pause is added to PausedSeconds and a
// package end time moves back by the same amount.
func (s *TableService) Resume(ctx context.Context, tableID uint) (*models.Session, error) {
	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = activeSession(tx, tableID); err != nil {
			return err
		}
		if session.Status != models.SessionPaused || session.PausedAt == nil {
			return ErrSessionNotPaused
		}

		now := s.opts.clock()
		paused := int64(now.Sub(*session.PausedAt) / time.Second)
		if paused < 0 {
			paused = 0
		}
		updates := map[string]interface{}{
			"status":         models.SessionOpen,
			"paused_at":      nil,
			"paused_seconds": session.PausedSeconds + paused,
		}
		if session.EndTime != nil {
			end := session.EndTime.Add(time.Duration(paused) * time.Second)
			updates["end_time"] = end
			session.EndTime = &end
		}

		res := tx.Model(&models.Session{}).
			Where("id = ? AND status = ?", session.ID, models.SessionPaused).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to resume session: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrSessionNotPaused
		}
		session.Status = models.SessionOpen
		session.PausedAt = nil
		session.PausedSeconds += paused
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventSessionUpdate, session)
	return session, nil
}

// Transfer moves a running session to another table. An open bill is
// settled into CarriedAmount at the old rate and restarts at the new rate;
// a package keeps its times and price.
func (s *TableService) Transfer(ctx context.Context, req dto.TransferRequest) (*models.Session, error) {
	if req.FromTableID == req.ToTableID {
		return nil, ErrSameTable
	}

	var session *models.Session
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if session, err = activeSession(tx, req.FromTableID); err != nil {
			return err
		}

		var to models.Table
		if err := tx.First(&to, req.ToTableID).Error; err != nil {
			return orNotFound(err, ErrTableNotFound)
		}
		if !to.Startable() {
			return ErrTableUnavailable
		}

		res := tx.Model(&models.Table{}).
			Where("id = ? AND status IN ?", to.ID, startableTables).
			Update("status", models.TableActive)
		if res.Error != nil {
			return fmt.Errorf("failed to claim table: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrTableUnavailable
		}

		if err := tx.Model(&models.Table{}).
			Where("id = ? AND status = ?", req.FromTableID, models.TableActive).
			Update("status", models.TableCleaning).Error; err != nil {
			return fmt.Errorf("failed to release table: %w", err)
		}

		now := s.opts.clock()
		updates := map[string]interface{}{"table_id": to.ID}
		if !session.IsPackage() {
			accrued := billing.OpenBill(sessionClock(*session).Elapsed(now), session.HourlyRate)
			updates["carried_amount"] = session.CarriedAmount + accrued
			updates["start_time"] = now
			updates["paused_seconds"] = 0
			updates["hourly_rate"] = to.HourlyRate
			if session.PausedAt != nil {
				updates["paused_at"] = now
			}
		}

		res = tx.Model(&models.Session{}).
			Where("id = ? AND table_id = ? AND status IN ?", session.ID, req.FromTableID, runningSessions).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to move session: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrSessionNotRunning
		}

		return tx.Preload("Table").Preload("Items", "settled_order_id IS NULL").First(session, session.ID).Error
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Session %d moved from table %d to table %d", session.ID, req.FromTableID, req.ToTableID)
	s.opts.Hub.Broadcast(floor.EventSessionUpdate, session)
	s.opts.Hub.Broadcast(floor.EventTableUpdate, session.Table)
	return session, nil
}

// AddItem attaches an F&B line to the running session. Stock is checked
// here and only decremented when the line is paid.
func (s *TableService) AddItem(ctx context.Context, tableID uint, req dto.AddItemRequest) (*models.SessionItem, error) {
	var item models.SessionItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := activeSession(tx, tableID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.First(&product, req.ProductID).Error; err != nil {
			return orNotFound(err, ErrProductNotFound)
		}
		if !product.Active {
			return ErrProductInactive
		}

		pending := 0
		var existing *models.SessionItem
		for i := range session.Items {
			line := &session.Items[i]
			if line.ProductID != product.ID {
				continue
			}
			pending += line.Quantity
			if line.UnitPrice == product.Price {
				existing = line
			}
		}
		if product.Stock < pending+req.Quantity {
			return ErrInsufficientStock
		}

		if existing != nil {
			res := tx.Model(&models.SessionItem{}).
				Where("id = ? AND settled_order_id IS NULL", existing.ID).
				Update("quantity", gorm.Expr("quantity + ?", req.Quantity))
			if res.Error != nil {
				return fmt.Errorf("failed to update item: %w", res.Error)
			}
			if res.RowsAffected != 1 {
				return ErrItemSettled
			}
			return tx.First(&item, existing.ID).Error
		}

		item = models.SessionItem{
			SessionID: session.ID,
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  req.Quantity,
		}
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("failed to add item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventSessionUpdate, map[string]interface{}{"table_id": tableID, "item": item})
	return &item, nil
}

func (s *TableService) RemoveItem(ctx context.Context, tableID, itemID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := activeSession(tx, tableID)
		if err != nil {
			return err
		}
		res := tx.Where("id = ? AND session_id = ? AND settled_order_id IS NULL", itemID, session.ID).
			Delete(&models.SessionItem{})
		if res.Error != nil {
			return fmt.Errorf("failed to remove item: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrItemNotFound
		}
		return nil
	})
}

// Session returns the running session of a table with its member and
// unsettled lines.
func (s *TableService) Session(ctx context.Context, tableID uint) (*models.Session, error) {
	var session models.Session
	err := s.db.WithContext(ctx).
		Preload("Table").
		Preload("Member").
		Preload("Items", "settled_order_id IS NULL").
		Where("table_id = ? AND status IN ?", tableID, runningSessions).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		return nil, orNotFound(err, ErrSessionNotFound)
	}
	return &session, nil
}

// Live reports every table with its running session, current bill and
// package countdown. Package warnings and expiries fire once per session.
func (s *TableService) Live(ctx context.Context) ([]LiveTable, error) {
	db := s.db.WithContext(ctx)

	tables := []models.Table{}
	if err := db.Order("number ASC").Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	var sessions []models.Session
	err := db.Preload("Member").
		Preload("Items", "settled_order_id IS NULL").
		Where("status IN ?", runningSessions).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	byTable := make(map[uint]*models.Session, len(sessions))
	for i := range sessions {
		byTable[sessions[i].TableID] = &sessions[i]
	}

	now := s.opts.clock()
	out := make([]LiveTable, 0, len(tables))
	for _, table := range tables {
		out = append(out, s.live(ctx, table, byTable[table.ID], now))
	}
	return out, nil
}

func (s *TableService) LiveForTable(ctx context.Context, tableID uint) (*LiveTable, error) {
	table, err := s.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	session, err := s.Session(ctx, tableID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return nil, err
	}
	live := s.live(ctx, *table, session, s.opts.clock())
	return &live, nil
}

func (s *TableService) live(ctx context.Context, table models.Table, session *models.Session, now time.Time) LiveTable {
	lt := LiveTable{Table: table, Session: session}
	if session == nil {
		return lt
	}
	session.Table = table

	clock := sessionClock(*session)
	lt.ElapsedSeconds = clock.Elapsed(now)
	lt.CurrentBill = billing.SessionBill(clock, session.HourlyRate, session.CarriedAmount, now)
	if session.TableBillOrderID != nil {
		lt.CurrentBill = session.TableBillPaid
	}
	for _, item := range session.Items {
		lt.ItemsTotal += item.Subtotal()
	}

	if clock.IsPackage() {
		lt.RemainingSeconds = clock.Remaining(now)
		lt.Expired = lt.RemainingSeconds <= 0
		lt.Warning = !lt.Expired && lt.RemainingSeconds <= s.opts.Tracker.WarnSeconds()
		for _, signal := range s.opts.Tracker.Observe(session.ID, lt.RemainingSeconds) {
			if !s.claimSignal(ctx, session, signal, now) {
				continue
			}
			lt.Alerts = append(lt.Alerts, signal)
			s.notifyPackage(ctx, table, session, signal, lt.RemainingSeconds)
		}
	}
	return lt
}

// claimSignal stamps the session with the alert before it is raised. Only
// the caller whose update lands raises it, so a restart or a second process
// never repeats a warning the store already holds.
func (s *TableService) claimSignal(ctx context.Context, session *models.Session, signal billing.Signal, now time.Time) bool {
	column, stamp := "warned_at", &session.WarnedAt
	if signal == billing.SignalExpired {
		column, stamp = "expired_at", &session.ExpiredAt
	}
	if *stamp != nil {
		return false
	}

	res := s.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND "+column+" IS NULL", session.ID).
		Update(column, now)
	if res.Error != nil {
		utils.ErrorLogger.Errorf("failed to record %s for session %d: %v", signal, session.ID, res.Error)
		return false
	}
	if res.RowsAffected != 1 {
		return false
	}
	*stamp = &now
	return true
}

func (s *TableService) notifyPackage(ctx context.Context, table models.Table, session *models.Session, signal billing.Signal, remaining int64) {
	n := models.Notification{SessionID: &session.ID, CreatedAt: s.opts.clock()}
	event := floor.EventPackageWarning
	switch signal {
	case billing.SignalWarning:
		n.Type = models.NotifPackageWarning
		n.Title = "Package ending soon"
		n.Message = fmt.Sprintf("Table %s has %d minutes left", table.Number, (remaining+59)/60)
	case billing.SignalExpired:
		n.Type = models.NotifPackageExpired
		n.Title = "Package time is up"
		n.Message = fmt.Sprintf("Table %s package has ended", table.Number)
		event = floor.EventPackageExpired
	}

	if err := s.db.WithContext(ctx).Create(&n).Error; err != nil {
		utils.ErrorLogger.Errorf("failed to save package notification: %v", err)
	}
	s.opts.Hub.Broadcast(event, n)
}

// Checkout stops the session on a table and settles its bill in one store
// transaction. A by-item payment that leaves the table bill or any line
// unpaid keeps the session running; once the table bill is paid the clock no
// longer adds to it. A final payment closes the session and sends the table
// to CLEANING.
func (s *TableService) Checkout(ctx context.Context, tableID uint, req dto.CheckoutRequest, cashierID uint) (*CheckoutResult, error) {
	var result CheckoutResult
	var elapsed, tableBill int64

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session, err := activeSession(tx, tableID)
		if err != nil {
			return err
		}
		var table models.Table
		if err := tx.First(&table, tableID).Error; err != nil {
			return orNotFound(err, ErrTableNotFound)
		}

		now := s.opts.clock()
		clock := sessionClock(*session)
		elapsed = clock.Elapsed(now)
		tableBill = billing.SessionBill(clock, session.HourlyRate, session.CarriedAmount, now)
		tablePaid := session.TableBillOrderID != nil
		if tablePaid {
			tableBill = session.TableBillPaid
		}

		lines := make([]billing.BillItem, 0, len(session.Items))
		for _, item := range session.Items {
			lines = append(lines, billing.BillItem{
				Kind:          billing.KindProduct,
				SessionItemID: item.ID,
				ProductID:     item.ProductID,
				Name:          item.Name,
				UnitPrice:     item.UnitPrice,
				Quantity:      item.Quantity,
			})
		}

		tenders := dto.Tenders(req.Payments)
		bill, err := billing.Compose(billing.CheckoutInput{
			TableBill:        tableBill,
			TableName:        table.Number,
			Lines:            lines,
			Split:            req.SplitMode,
			TableBillPaid:    tablePaid,
			IncludeTableBill: req.IncludeTableBill,
			SelectedLines:    req.SelectedItemIDs,
			Persons:          req.Persons,
			Discount:         req.Discount.Discount(),
			PointsRedeemed:   req.PointsRedeemed,
			Payments:         tenders,
		}, s.opts.Rates)
		if err != nil {
			return checkoutError(err)
		}
		if !bill.Confirmable() {
			return ErrInsufficientPayment
		}

		memberID := req.MemberID
		if memberID == nil {
			memberID = session.MemberID
		}
		order, err := s.transactions.post(tx, PostInput{
			Items:          bill.Items,
			Discount:       bill.Discount,
			PointsRedeemed: bill.PointsRedeemed,
			MemberID:       memberID,
			CustomerName:   session.CustomerName,
			SessionID:      &session.ID,
			Payments:       tenders,
			CashierID:      cashierID,
		})
		if err != nil {
			return err
		}

		var settled []uint
		var settlesTable bool
		for _, item := range bill.Items {
			switch item.Kind {
			case billing.KindProduct:
				settled = append(settled, item.SessionItemID)
			case billing.KindTableBill:
				settlesTable = true
			}
		}
		if settlesTable {
			res := tx.Model(&models.Session{}).
				Where("id = ? AND table_bill_order_id IS NULL", session.ID).
				Updates(map[string]interface{}{"table_bill_order_id": order.ID, "table_bill_paid": tableBill})
			if res.Error != nil {
				return fmt.Errorf("failed to settle table bill: %w", res.Error)
			}
			if res.RowsAffected != 1 {
				return checkoutError(billing.ErrTableBillPaid)
			}
			session.TableBillOrderID = &order.ID
			session.TableBillPaid = tableBill
		}
		if len(settled) > 0 {
			res := tx.Model(&models.SessionItem{}).
				Where("id IN ? AND settled_order_id IS NULL", settled).
				Update("settled_order_id", order.ID)
			if res.Error != nil {
				return fmt.Errorf("failed to settle items: %w", res.Error)
			}
			if res.RowsAffected != int64(len(settled)) {
				return ErrItemSettled
			}
		}

		if bill.Final {
			res := tx.Model(&models.Session{}).
				Where("id = ? AND status IN ?", session.ID, runningSessions).
				Updates(map[string]interface{}{
					"status":    models.SessionClosed,
					"closed_at": now,
					"order_id":  order.ID,
				})
			if res.Error != nil {
				return fmt.Errorf("failed to close session: %w", res.Error)
			}
			if res.RowsAffected != 1 {
				return ErrSessionNotRunning
			}
			if err := tx.Model(&models.Table{}).Where("id = ?", table.ID).
				Update("status", models.TableCleaning).Error; err != nil {
				return fmt.Errorf("failed to release table: %w", err)
			}
			session.Status = models.SessionClosed
			session.ClosedAt = &now
			session.OrderID = &order.ID
			table.Status = models.TableCleaning
		}
		session.Table = table

		result = CheckoutResult{Bill: bill, Order: order, Session: session}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.transactions.afterPost(ctx, result.Order)
	if result.Bill.Final {
		s.afterClose(ctx, result.Session, elapsed, tableBill)
	} else {
		s.opts.Hub.Broadcast(floor.EventSessionUpdate, result.Session)
	}
	return &result, nil
}

func (s *TableService) afterClose(ctx context.Context, session *models.Session, elapsed, tableBill int64) {
	s.opts.Tracker.Forget(session.ID)
	utils.InfoLogger.Infof("Session %d on table %s closed, table bill %s", session.ID, session.Table.Number, utils.FormatRupiah(tableBill))
	s.opts.Hub.Broadcast(floor.EventSessionClosed, session)
	s.opts.Hub.Broadcast(floor.EventTableUpdate, session.Table)
	s.opts.publish(ctx, queue.SessionClosed, queue.SessionClosedEvent{
		SessionID:      session.ID,
		TableID:        session.TableID,
		OrderID:        *session.OrderID,
		ElapsedSeconds: elapsed,
		TableBill:      tableBill,
		ClosedAt:       *session.ClosedAt,
	})
}

// MarkClean returns a CLEANING table to AVAILABLE and logs who cleaned it.
func (s *TableService) MarkClean(ctx context.Context, tableID, userID uint) (*models.Table, error) {
	var table models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&table, tableID).Error; err != nil {
			return orNotFound(err, ErrTableNotFound)
		}

		res := tx.Model(&models.Table{}).
			Where("id = ? AND status = ?", tableID, models.TableCleaning).
			Update("status", models.TableAvailable)
		if res.Error != nil {
			return fmt.Errorf("failed to update table: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrTableNotCleaning
		}
		table.Status = models.TableAvailable

		entry := models.CleaningLog{CleanerID: userID, TableID: tableID, CreatedAt: s.opts.clock()}
		var last models.Session
		if err := tx.Select("id").
			Where("table_id = ? AND status = ?", tableID, models.SessionClosed).
			Order("closed_at DESC").
			Take(&last).Error; err == nil {
			entry.SessionID = &last.ID
		}
		if err := tx.Omit(clause.Associations).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to write cleaning log: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.opts.Hub.Broadcast(floor.EventTableUpdate, table)
	return &table, nil
}
