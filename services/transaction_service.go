package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yeremiapane/billiard-pos/billing"
	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/floor"
	"github.com/yeremiapane/billiard-pos/models"
	"github.com/yeremiapane/billiard-pos/queue"
	"github.com/yeremiapane/billiard-pos/utils"
)

// TransactionService writes finalized bills as orders. Every post is one
// store transaction covering the order, its lines and payments, stock and
// the member's points and wallet.
type TransactionService struct {
	db   *gorm.DB
	opts Options
}

func NewTransactionService(db *gorm.DB, opts Options) *TransactionService {
	return &TransactionService{db: db, opts: opts.withDefaults()}
}

// PostInput is a finalized bill. Prices are taken as given.
type PostInput struct {
	Items          []billing.BillItem
	Discount       int64
	PointsRedeemed int64
	MemberID       *uint
	CustomerName   string
	SessionID      *uint
	// PaymentMethod is used for a single full payment when Payments is empty.
	PaymentMethod string
	Payments      []billing.Tender
	CashierID     uint
}

type TransactionPage struct {
	Items      []models.Order `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	Total      int64          `json:"total"`
	TotalPages int            `json:"total_pages"`
}

// Post records a sale submitted directly (counter sales, manual entries).
// Product lines are priced from the catalog; table-bill lines carry the
// amount the client computed.
func (s *TransactionService) Post(ctx context.Context, req dto.PostTransactionRequest, cashierID uint) (*models.Order, error) {
	discount := req.Discount.Discount()
	if discount.Kind == billing.DiscountPercentage && discount.Value > 100 {
		return nil, checkoutError(billing.ErrInvalidDiscount)
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	items, err := s.priceItems(tx, req.Items)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.Subtotal()
	}

	order, err := s.post(tx, PostInput{
		Items:          items,
		Discount:       discount.Amount(subtotal),
		PointsRedeemed: req.PointsRedeemed,
		MemberID:       req.MemberID,
		CustomerName:   req.CustomerName,
		SessionID:      req.SessionID,
		PaymentMethod:  req.PaymentMethod,
		Payments:       dto.Tenders(req.Payments),
		CashierID:      cashierID,
	})
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.afterPost(ctx, order)
	return order, nil
}

func (s *TransactionService) priceItems(tx *gorm.DB, reqItems []dto.TransactionItem) ([]billing.BillItem, error) {
	items := make([]billing.BillItem, 0, len(reqItems))
	for _, it := range reqItems {
		switch it.Type {
		case billing.KindProduct:
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				return nil, orNotFound(err, ErrProductNotFound)
			}
			if !product.Active {
				return nil, ErrProductInactive
			}
			items = append(items, billing.BillItem{
				Kind:      billing.KindProduct,
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  it.Quantity,
			})
		case billing.KindTableBill:
			name := strings.TrimSpace(it.Name)
			if name == "" {
				name = "Table bill"
			}
			items = append(items, billing.BillItem{
				Kind:      billing.KindTableBill,
				Name:      name,
				UnitPrice: it.UnitPrice,
				Quantity:  it.Quantity,
			})
		default:
			return nil, ErrInvalidItem
		}
	}
	return items, nil
}

// post runs inside the caller's transaction. Every precondition is checked
// before the first write; a failing conditional update afterwards (lost
// race on stock, points or wallet) returns an error and the caller rolls back.
func (s *TransactionService) post(tx *gorm.DB, in PostInput) (*models.Order, error) {
	if len(in.Items) == 0 {
		return nil, ErrEmptyTransaction
	}
	now := s.opts.clock()

	orderItems := make([]models.OrderItem, 0, len(in.Items))
	stock := make(map[uint]int)
	var subtotal int64
	for _, it := range in.Items {
		if it.Quantity < 1 || it.UnitPrice < 0 {
			return nil, ErrInvalidItem
		}
		line := models.OrderItem{
			Type:      models.ItemType(it.Kind),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal(),
			CreatedAt: now,
		}
		switch it.Kind {
		case billing.KindProduct:
			productID := it.ProductID
			line.ProductID = &productID
			stock[productID] += it.Quantity
		case billing.KindTableBill:
		default:
			return nil, ErrInvalidItem
		}
		subtotal += line.Subtotal
		orderItems = append(orderItems, line)
	}

	if in.Discount < 0 || in.PointsRedeemed < 0 {
		return nil, checkoutError(billing.ErrInvalidDiscount)
	}

	tenders := in.Payments
	if len(tenders) == 0 {
		tenders = []billing.Tender{{Method: in.PaymentMethod}}
	}
	if len(tenders) > billing.MaxTenders {
		return nil, checkoutError(billing.ErrTooManyTenders)
	}
	usesWallet := false
	for _, t := range tenders {
		if !models.ValidPaymentMethod(t.Method) {
			return nil, ErrInvalidPaymentMethod
		}
		if t.Amount < 0 {
			return nil, checkoutError(billing.ErrInvalidTender)
		}
		if t.Method == models.MethodWallet {
			usesWallet = true
		}
	}

	var member *models.Member
	if in.MemberID != nil {
		member = &models.Member{}
		if err := tx.First(member, *in.MemberID).Error; err != nil {
			return nil, orNotFound(err, ErrMemberNotFound)
		}
	} else if in.PointsRedeemed > 0 || usesWallet {
		return nil, ErrMemberRequired
	}
	if member != nil && member.Points < in.PointsRedeemed {
		return nil, ErrInsufficientPoints
	}

	totals := s.opts.Rates.Totals(subtotal, in.Discount, in.PointsRedeemed)
	if len(in.Payments) == 0 {
		tenders[0].Amount = totals.GrandTotal
	}

	var paid, fromWallet int64
	payments := make([]models.Payment, 0, len(tenders))
	for _, t := range tenders {
		paid += t.Amount
		if t.Method == models.MethodWallet {
			fromWallet += t.Amount
		}
		payments = append(payments, models.Payment{Method: t.Method, Amount: t.Amount, CreatedAt: now})
	}
	if paid < totals.GrandTotal {
		return nil, ErrInsufficientPayment
	}
	// Change is paid in cash; the wallet covers at most what the other
	// tenders leave open.
	if fromWallet > 0 && fromWallet > totals.GrandTotal-(paid-fromWallet) {
		return nil, ErrWalletOverpaid
	}
	if fromWallet > 0 && member.Wallet < fromWallet {
		return nil, ErrInsufficientWallet
	}

	for productID, qty := range stock {
		var product models.Product
		if err := tx.Select("id", "stock").First(&product, productID).Error; err != nil {
			return nil, orNotFound(err, ErrProductNotFound)
		}
		if product.Stock < qty {
			return nil, ErrInsufficientStock
		}
	}

	var earned int64
	if member != nil {
		earned = s.opts.Rates.PointsEarned(totals.GrandTotal)
	}

	customer := strings.TrimSpace(in.CustomerName)
	if customer == "" && member != nil {
		customer = member.Name
	}

	order := models.Order{
		InvoiceNumber:  newInvoiceNumber(now),
		SessionID:      in.SessionID,
		MemberID:       in.MemberID,
		CustomerName:   customer,
		ShiftID:        openShiftID(tx, in.CashierID),
		Subtotal:       totals.Subtotal,
		Discount:       totals.Discount,
		PointsRedeemed: totals.PointsRedeemed,
		PointsDiscount: totals.PointsDiscount,
		Tax:            totals.Tax,
		Total:          totals.GrandTotal,
		AmountPaid:     paid,
		Change:         paid - totals.GrandTotal,
		PointsEarned:   earned,
		PaymentMethod:  primaryMethod(tenders),
		PaymentStatus:  models.PaymentStatusPaid,
		OrderItems:     orderItems,
		Payments:       payments,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if in.CashierID != 0 {
		cashierID := in.CashierID
		order.CashierID = &cashierID
	}

	if err := tx.Create(&order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	for productID, qty := range stock {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock >= ?", productID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))
		if res.Error != nil {
			return nil, fmt.Errorf("failed to decrement stock: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return nil, ErrInsufficientStock
		}
	}

	if member != nil {
		if err := s.settleMember(tx, member.ID, order.ID, in.PointsRedeemed, earned, fromWallet, now); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

func (s *TransactionService) settleMember(tx *gorm.DB, memberID, orderID uint, redeemed, earned, fromWallet int64, now time.Time) error {
	if redeemed > 0 {
		res := tx.Model(&models.Member{}).
			Where("id = ? AND points >= ?", memberID, redeemed).
			Update("points", gorm.Expr("points - ?", redeemed))
		if res.Error != nil {
			return fmt.Errorf("failed to debit points: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientPoints
		}
		if err := writeLedger(tx, memberID, &orderID, models.LedgerRedeem, -redeemed, now); err != nil {
			return err
		}
	}

	if earned > 0 {
		res := tx.Model(&models.Member{}).
			Where("id = ?", memberID).
			Update("points", gorm.Expr("points + ?", earned))
		if res.Error != nil {
			return fmt.Errorf("failed to credit points: %w", res.Error)
		}
		if err := writeLedger(tx, memberID, &orderID, models.LedgerEarn, earned, now); err != nil {
			return err
		}
	}

	if fromWallet > 0 {
		res := tx.Model(&models.Member{}).
			Where("id = ? AND wallet >= ?", memberID, fromWallet).
			Update("wallet", gorm.Expr("wallet - ?", fromWallet))
		if res.Error != nil {
			return fmt.Errorf("failed to debit wallet: %w", res.Error)
		}
		if res.RowsAffected != 1 {
			return ErrInsufficientWallet
		}
	}
	return nil
}

// writeLedger records a points movement with the balance read back after it.
func writeLedger(tx *gorm.DB, memberID uint, orderID *uint, kind models.LedgerType, points int64, now time.Time) error {
	var member models.Member
	if err := tx.Select("id", "points").First(&member, memberID).Error; err != nil {
		return fmt.Errorf("failed to read member balance: %w", err)
	}
	entry := models.PointLedger{
		MemberID:     memberID,
		OrderID:      orderID,
		Type:         kind,
		Points:       points,
		BalanceAfter: member.Points,
		CreatedAt:    now,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write points ledger: %w", err)
	}
	return nil
}

func openShiftID(tx *gorm.DB, cashierID uint) *uint {
	if cashierID == 0 {
		return nil
	}
	var shift models.Shift
	err := tx.Select("id").
		Where("user_id = ? AND status = ?", cashierID, models.ShiftOpen).
		Order("id DESC").
		Take(&shift).Error
	if err != nil {
		return nil
	}
	return &shift.ID
}

func primaryMethod(tenders []billing.Tender) string {
	method := tenders[0].Method
	for _, t := range tenders[1:] {
		if t.Method != method {
			return models.MethodSplit
		}
	}
	return method
}

// newInvoiceNumber returns INV-YYYYMMDD-XXXXXXXX.
func newInvoiceNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("INV-%s-%s", now.Format("20060102"), suffix)
}

func (s *TransactionService) afterPost(ctx context.Context, order *models.Order) {
	utils.InfoLogger.Infof("Posted %s total=%s method=%s", order.InvoiceNumber, utils.FormatRupiah(order.Total), order.PaymentMethod)
	s.opts.Hub.Broadcast(floor.EventTransactionPosted, order)
	s.opts.publish(ctx, queue.TransactionPosted, queue.TransactionPostedEvent{
		OrderID:       order.ID,
		InvoiceNumber: order.InvoiceNumber,
		SessionID:     order.SessionID,
		MemberID:      order.MemberID,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		PointsEarned:  order.PointsEarned,
		PostedAt:      order.CreatedAt,
	})
}

func (s *TransactionService) List(ctx context.Context, filter dto.TransactionFilter) (*TransactionPage, error) {
	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}

	scope, err := s.filterScope(filter)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Scopes(scope).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	orders := []models.Order{}
	err = s.db.WithContext(ctx).
		Scopes(scope).
		Preload("OrderItems").
		Preload("Payments").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	return &TransactionPage{
		Items:      orders,
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

func (s *TransactionService) filterScope(filter dto.TransactionFilter) (func(*gorm.DB) *gorm.DB, error) {
	var from, to *time.Time
	if filter.DateFrom != "" {
		start, err := time.ParseInLocation(models.DateLayout, filter.DateFrom, s.opts.Location)
		if err != nil {
			return nil, precondition("INVALID_DATE", "date_from must be YYYY-MM-DD")
		}
		from = &start
	}
	if filter.DateTo != "" {
		day, err := time.ParseInLocation(models.DateLayout, filter.DateTo, s.opts.Location)
		if err != nil {
			return nil, precondition("INVALID_DATE", "date_to must be YYYY-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		to = &end
	}

	return func(db *gorm.DB) *gorm.DB {
		if search := strings.TrimSpace(filter.Search); search != "" {
			like := "%" + search + "%"
			db = db.Where("invoice_number LIKE ? OR customer_name LIKE ?", like, like)
		}
		if from != nil {
			db = db.Where("created_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("created_at < ?", *to)
		}
		if filter.PaymentMethod != "" {
			db = db.Where("payment_method = ?", filter.PaymentMethod)
		}
		return db
	}, nil
}

func (s *TransactionService) Get(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Payments").
		Preload("Member").
		First(&order, id).Error
	if err != nil {
		return nil, orNotFound(err, ErrOrderNotFound)
	}
	return &order, nil
}
