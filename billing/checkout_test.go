package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []BillItem {
	return []BillItem{
		{Kind: KindProduct, SessionItemID: 11, ProductID: 1, Name: "Iced Tea", UnitPrice: 8000, Quantity: 2},
		{Kind: KindProduct, SessionItemID: 12, ProductID: 2, Name: "Fried Rice", UnitPrice: 35000, Quantity: 1},
	}
}

func TestTotalsScenario(t *testing.T) {
	totals := DefaultRates().Totals(88000, 0, 0)
	assert.Equal(t, int64(9680), totals.Tax)
	assert.Equal(t, int64(97680), totals.GrandTotal)
}

func TestComposeNone(t *testing.T) {
	bill, err := Compose(CheckoutInput{
		TableBill: 37500,
		TableName: "A1",
		Lines:     sampleLines(),
		Payments:  []Tender{{Method: "CASH", Amount: 100000}},
	}, DefaultRates())
	require.NoError(t, err)

	require.Len(t, bill.Items, 3)
	assert.Equal(t, KindTableBill, bill.Items[0].Kind)
	assert.Equal(t, "Table A1", bill.Items[0].Name)
	assert.Equal(t, int64(88500), bill.Subtotal)
	assert.Equal(t, int64(9735), bill.Tax)
	assert.Equal(t, int64(98235), bill.GrandTotal)
	assert.Equal(t, int64(1765), bill.Change)
	assert.Equal(t, int64(0), bill.Remaining)
	assert.True(t, bill.Confirmable())
	assert.True(t, bill.Final)
}

func TestComposeDiscountAndPoints(t *testing.T) {
	rates := DefaultRates()

	bill, err := Compose(CheckoutInput{
		TableBill:      50000,
		Discount:       Discount{Kind: DiscountPercentage, Value: 15},
		PointsRedeemed: 5,
	}, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), bill.Discount)
	assert.Equal(t, int64(5000), bill.PointsDiscount)
	assert.Equal(t, int64(37500), bill.Taxable)
	assert.Equal(t, int64(4125), bill.Tax)
	assert.False(t, bill.Confirmable())
	assert.Equal(t, bill.GrandTotal, bill.Remaining)

	bill, err = Compose(CheckoutInput{
		TableBill: 20000,
		Discount:  Discount{Kind: DiscountFixed, Value: 50000},
	}, rates)
	require.NoError(t, err)
	assert.Equal(t, int64(0), bill.Taxable, "fixed discount larger than subtotal floors at zero")
	assert.Equal(t, int64(0), bill.GrandTotal)
	assert.True(t, bill.Confirmable())
}

func TestComposeByItem(t *testing.T) {
	rates := DefaultRates()

	bill, err := Compose(CheckoutInput{
		TableBill:     37500,
		Lines:         sampleLines(),
		Split:         SplitByItem,
		SelectedLines: []uint{12},
	}, rates)
	require.NoError(t, err)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, "Fried Rice", bill.Items[0].Name)
	assert.Equal(t, int64(35000), bill.Subtotal)
	assert.False(t, bill.Final)

	bill, err = Compose(CheckoutInput{
		TableBill:        37500,
		Lines:            sampleLines(),
		Split:            SplitByItem,
		IncludeTableBill: true,
	}, rates)
	require.NoError(t, err)
	require.Len(t, bill.Items, 1)
	assert.Equal(t, KindTableBill, bill.Items[0].Kind)
	assert.Equal(t, int64(37500), bill.Subtotal)
	assert.False(t, bill.Final, "lines are still open")

	bill, err = Compose(CheckoutInput{
		TableBill:        37500,
		Lines:            sampleLines(),
		Split:            SplitByItem,
		IncludeTableBill: true,
		SelectedLines:    []uint{11},
	}, rates)
	require.NoError(t, err)
	require.Len(t, bill.Items, 2)
	assert.False(t, bill.Final)

	bill, err = Compose(CheckoutInput{
		TableBill:        37500,
		Lines:            sampleLines(),
		Split:            SplitByItem,
		IncludeTableBill: true,
		SelectedLines:    []uint{11, 12},
	}, rates)
	require.NoError(t, err)
	assert.True(t, bill.Final)

	bill, err = Compose(CheckoutInput{
		TableBill:     37500,
		TableBillPaid: true,
		Lines:         sampleLines(),
		Split:         SplitByItem,
		SelectedLines: []uint{11, 12},
	}, rates)
	require.NoError(t, err)
	assert.Len(t, bill.Items, 2)
	assert.True(t, bill.Final, "the table bill was settled earlier")

	_, err = Compose(CheckoutInput{
		TableBill:        37500,
		TableBillPaid:    true,
		Lines:            sampleLines(),
		Split:            SplitByItem,
		IncludeTableBill: true,
	}, rates)
	assert.ErrorIs(t, err, ErrTableBillPaid)

	bill, err = Compose(CheckoutInput{TableBill: 37500, TableBillPaid: true, Lines: sampleLines()}, rates)
	require.NoError(t, err)
	assert.Len(t, bill.Items, 2)
	assert.True(t, bill.Final)

	_, err = Compose(CheckoutInput{Lines: sampleLines(), Split: SplitByItem, SelectedLines: []uint{99}}, rates)
	assert.ErrorIs(t, err, ErrUnknownLine)

	_, err = Compose(CheckoutInput{Lines: sampleLines(), Split: SplitByItem}, rates)
	assert.ErrorIs(t, err, ErrNothingSelected)
}

func TestComposeByPerson(t *testing.T) {
	bill, err := Compose(CheckoutInput{
		TableBill: 100000,
		Split:     SplitByPerson,
		Persons:   3,
		Payments:  []Tender{{Method: "CASH", Amount: 50000}, {Method: "QRIS", Amount: 61000}},
	}, DefaultRates())
	require.NoError(t, err)
	assert.Equal(t, int64(111000), bill.GrandTotal)
	assert.Equal(t, int64(37000), bill.PerPerson)
	assert.Equal(t, int64(111000), bill.TotalPaid)
	assert.True(t, bill.Confirmable())

	_, err = Compose(CheckoutInput{TableBill: 1, Split: SplitByPerson}, DefaultRates())
	assert.ErrorIs(t, err, ErrInvalidPersons)
}

func TestComposeChangeAndRemainingExclusive(t *testing.T) {
	for _, paid := range []int64{0, 50000, 110000, 111000, 150000} {
		bill, err := Compose(CheckoutInput{
			TableBill: 100000,
			Payments:  []Tender{{Method: "CASH", Amount: paid}},
		}, DefaultRates())
		require.NoError(t, err)
		assert.False(t, bill.Change > 0 && bill.Remaining > 0, "paid %d", paid)
		assert.Equal(t, bill.Confirmable(), paid >= bill.GrandTotal)
	}
}

func TestComposeValidation(t *testing.T) {
	tests := []struct {
		name string
		in   CheckoutInput
		want error
	}{
		{"unknown split", CheckoutInput{Split: "halves"}, ErrUnknownSplit},
		{"percentage above 100", CheckoutInput{Discount: Discount{Kind: DiscountPercentage, Value: 120}}, ErrInvalidDiscount},
		{"negative fixed", CheckoutInput{Discount: Discount{Kind: DiscountFixed, Value: -1}}, ErrInvalidDiscount},
		{"negative points", CheckoutInput{PointsRedeemed: -2}, ErrInvalidPoints},
		{"four tenders", CheckoutInput{Payments: make([]Tender, 4)}, ErrTooManyTenders},
		{"negative tender", CheckoutInput{Payments: []Tender{{Method: "CASH", Amount: -10}}}, ErrInvalidTender},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(tt.in, DefaultRates())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewRates(t *testing.T) {
	r := NewRates(0.11, 1000, 10000)
	assert.Equal(t, int64(1100), r.TaxBasisPoints)
	assert.Equal(t, int64(9), r.PointsEarned(97680))
	assert.Equal(t, int64(0), r.PointsEarned(9999))
}
