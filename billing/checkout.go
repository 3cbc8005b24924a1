package billing

import (
	"errors"
	"fmt"
)

type SplitMode string

const (
	SplitNone     SplitMode = "none"
	SplitByItem   SplitMode = "by_item"
	SplitByPerson SplitMode = "by_person"
)

type DiscountKind string

const (
	DiscountPercentage DiscountKind = "percentage"
	DiscountFixed      DiscountKind = "fixed"
)

type Discount struct {
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"`
}

// Amount is floor(subtotal * pct / 100) or the fixed value. It is not capped
// here; Totals floors the taxable amount at zero.
func (d Discount) Amount(subtotal int64) int64 {
	switch d.Kind {
	case DiscountPercentage:
		return subtotal * d.Value / 100
	case DiscountFixed:
		return d.Value
	}
	return 0
}

const (
	KindTableBill = "TABLE_BILL"
	KindProduct   = "PRODUCT"
)

// MaxTenders is the number of payment methods one checkout may combine.
const MaxTenders = 3

var (
	ErrUnknownSplit    = errors.New("unknown split mode")
	ErrInvalidPersons  = errors.New("split by person needs at least one person")
	ErrUnknownLine     = errors.New("selected item is not on this bill")
	ErrNothingSelected = errors.New("no items selected")
	ErrTableBillPaid   = errors.New("the table bill is already paid")
	ErrInvalidDiscount = errors.New("invalid discount")
	ErrInvalidPoints   = errors.New("points redeemed cannot be negative")
	ErrInvalidTender   = errors.New("invalid payment amount")
	ErrTooManyTenders  = fmt.Errorf("at most %d payment methods per checkout", MaxTenders)
)

// BillItem is one finalized line handed to the transaction poster.
type BillItem struct {
	Kind          string `json:"type"`
	SessionItemID uint   `json:"session_item_id,omitempty"`
	ProductID     uint   `json:"product_id,omitempty"`
	Name          string `json:"name"`
	UnitPrice     int64  `json:"unit_price"`
	Quantity      int    `json:"quantity"`
}

func (i BillItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

type Tender struct {
	Method string `json:"method"`
	Amount int64  `json:"amount"`
}

type CheckoutInput struct {
	TableBill int64
	TableName string
	// Lines are the unsettled F&B lines of the session.
	Lines []BillItem

	Split SplitMode
	// TableBillPaid drops the table bill from every split mode; an earlier
	// by-item checkout settled it.
	TableBillPaid bool

	// IncludeTableBill and SelectedLines (session item ids) apply to by-item.
	IncludeTableBill bool
	SelectedLines    []uint
	Persons          int

	Discount       Discount
	PointsRedeemed int64
	Payments       []Tender
}

type Bill struct {
	Items []BillItem `json:"items"`
	Totals
	Split     SplitMode `json:"split_mode"`
	Persons   int       `json:"persons,omitempty"`
	PerPerson int64     `json:"per_person,omitempty"`
	TotalPaid int64     `json:"total_paid"`
	Remaining int64     `json:"remaining"`
	Change    int64     `json:"change"`
	// Final is true when, after this bill, the table bill and every line are paid.
	Final bool `json:"final"`
}

// Confirmable reports whether the tendered amounts cover the bill.
func (b Bill) Confirmable() bool {
	return b.TotalPaid >= b.GrandTotal
}

// Compose selects the billable lines for the split mode, applies discount and
// points, computes tax and reconciles the tendered payments.
func Compose(in CheckoutInput, rates Rates) (Bill, error) {
	split := in.Split
	if split == "" {
		split = SplitNone
	}
	if err := validateInput(in, split); err != nil {
		return Bill{}, err
	}

	tableItem := BillItem{Kind: KindTableBill, Name: tableItemName(in.TableName), UnitPrice: in.TableBill, Quantity: 1}

	bill := Bill{Split: split}
	switch split {
	case SplitNone, SplitByPerson:
		if !in.TableBillPaid {
			bill.Items = append(bill.Items, tableItem)
		}
		bill.Items = append(bill.Items, in.Lines...)
		if len(bill.Items) == 0 {
			return Bill{}, ErrNothingSelected
		}
		bill.Final = true
	case SplitByItem:
		selected := make(map[uint]bool, len(in.SelectedLines))
		for _, id := range in.SelectedLines {
			selected[id] = true
		}
		if in.IncludeTableBill {
			if in.TableBillPaid {
				return Bill{}, ErrTableBillPaid
			}
			bill.Items = append(bill.Items, tableItem)
		}
		lines := 0
		for _, line := range in.Lines {
			if selected[line.SessionItemID] {
				bill.Items = append(bill.Items, line)
				delete(selected, line.SessionItemID)
				lines++
			}
		}
		if len(selected) > 0 {
			return Bill{}, ErrUnknownLine
		}
		if len(bill.Items) == 0 {
			return Bill{}, ErrNothingSelected
		}
		bill.Final = (in.TableBillPaid || in.IncludeTableBill) && lines == len(in.Lines)
	}

	var subtotal int64
	for _, item := range bill.Items {
		subtotal += item.Subtotal()
	}
	bill.Totals = rates.Totals(subtotal, in.Discount.Amount(subtotal), in.PointsRedeemed)

	if split == SplitByPerson {
		bill.Persons = in.Persons
		bill.PerPerson = ceilDiv(bill.GrandTotal, int64(in.Persons))
	}

	bill.reconcile(in.Payments)
	return bill, nil
}

func (b *Bill) reconcile(payments []Tender) {
	b.TotalPaid = 0
	for _, p := range payments {
		b.TotalPaid += p.Amount
	}
	b.Remaining = 0
	b.Change = 0
	if b.TotalPaid < b.GrandTotal {
		b.Remaining = b.GrandTotal - b.TotalPaid
	} else {
		b.Change = b.TotalPaid - b.GrandTotal
	}
}

func validateInput(in CheckoutInput, split SplitMode) error {
	switch split {
	case SplitNone, SplitByItem:
	case SplitByPerson:
		if in.Persons < 1 {
			return ErrInvalidPersons
		}
	default:
		return ErrUnknownSplit
	}
	switch in.Discount.Kind {
	case "":
		if in.Discount.Value != 0 {
			return ErrInvalidDiscount
		}
	case DiscountPercentage:
		if in.Discount.Value < 0 || in.Discount.Value > 100 {
			return ErrInvalidDiscount
		}
	case DiscountFixed:
		if in.Discount.Value < 0 {
			return ErrInvalidDiscount
		}
	default:
		return ErrInvalidDiscount
	}
	if in.PointsRedeemed < 0 {
		return ErrInvalidPoints
	}
	if len(in.Payments) > MaxTenders {
		return ErrTooManyTenders
	}
	for _, p := range in.Payments {
		if p.Amount < 0 {
			return ErrInvalidTender
		}
	}
	return nil
}

func tableItemName(table string) string {
	if table == "" {
		return "Table bill"
	}
	return "Table " + table
}
