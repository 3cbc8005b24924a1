// Package billing holds the pure money and time arithmetic of a table session:
// the session clock, the hourly calculator and the checkout composer.
// Nothing here touches the store; callers pass timestamps and amounts in.
package billing

import "math"

// Rates are the venue-wide money constants. The same value is used by the
// checkout composer and by the transaction poster so both agree on totals.
type Rates struct {
	// TaxBasisPoints is the tax rate in 1/10000 (1100 = 11%).
	TaxBasisPoints int64
	// PointValue is the currency value of one redeemed point.
	PointValue int64
	// PointEarnThreshold is the spend that earns one point.
	PointEarnThreshold int64
}

func DefaultRates() Rates {
	return Rates{TaxBasisPoints: 1100, PointValue: 1000, PointEarnThreshold: 10000}
}

// NewRates converts a fractional tax rate (0.11) into basis points.
func NewRates(taxRate float64, pointValue, earnThreshold int64) Rates {
	return Rates{
		TaxBasisPoints:     int64(math.Round(taxRate * 10000)),
		PointValue:         pointValue,
		PointEarnThreshold: earnThreshold,
	}
}

// Tax is floor(taxable * rate).
func (r Rates) Tax(taxable int64) int64 {
	if taxable <= 0 {
		return 0
	}
	return taxable * r.TaxBasisPoints / 10000
}

func (r Rates) PointsDiscount(points int64) int64 {
	if points <= 0 {
		return 0
	}
	return points * r.PointValue
}

// PointsEarned is floor(total / threshold).
func (r Rates) PointsEarned(total int64) int64 {
	if total <= 0 || r.PointEarnThreshold <= 0 {
		return 0
	}
	return total / r.PointEarnThreshold
}

// Totals is the arithmetic tail shared by every bill: discounts come off the
// subtotal, the taxable amount never goes below zero, tax is added on top.
type Totals struct {
	Subtotal       int64 `json:"subtotal"`
	Discount       int64 `json:"discount"`
	PointsRedeemed int64 `json:"points_redeemed"`
	PointsDiscount int64 `json:"points_discount"`
	Taxable        int64 `json:"taxable"`
	Tax            int64 `json:"tax"`
	GrandTotal     int64 `json:"grand_total"`
}

func (r Rates) Totals(subtotal, discount, pointsRedeemed int64) Totals {
	t := Totals{
		Subtotal:       subtotal,
		Discount:       discount,
		PointsRedeemed: pointsRedeemed,
		PointsDiscount: r.PointsDiscount(pointsRedeemed),
	}
	t.Taxable = subtotal - t.Discount - t.PointsDiscount
	if t.Taxable < 0 {
		t.Taxable = 0
	}
	t.Tax = r.Tax(t.Taxable)
	t.GrandTotal = t.Taxable + t.Tax
	return t
}
