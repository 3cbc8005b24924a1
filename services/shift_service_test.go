package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/billiard-pos/dto"
	"github.com/yeremiapane/billiard-pos/models"
)

func TestShiftLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cashier := f.user(t, models.RoleCashier)

	_, err := f.shifts.Current(ctx, cashier.ID)
	assert.ErrorIs(t, err, ErrShiftNotFound)

	shift, err := f.shifts.Open(ctx, cashier.ID, 200000)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(shift.Reference, "SHF-20240501-"))
	assert.Equal(t, models.ShiftOpen, shift.Status)

	_, err = f.shifts.Open(ctx, cashier.ID, 0)
	assert.ErrorIs(t, err, ErrShiftAlreadyOpen)

	current, err := f.shifts.Current(ctx, cashier.ID)
	require.NoError(t, err)
	assert.Equal(t, shift.ID, current.ID)

	_, err = f.transactions.Post(ctx, dto.PostTransactionRequest{
		PaymentMethod: "CASH",
		Items:         []dto.TransactionItem{tableBillItem(50000)},
		Payments:      cash(60000),
	}, cashier.ID)
	require.NoError(t, err)
	_, err = f.transactions.Post(ctx, dto.PostTransactionRequest{
		PaymentMethod: "QRIS",
		Items:         []dto.TransactionItem{tableBillItem(10000)},
	}, cashier.ID)
	require.NoError(t, err)
	// Posted without a cashier, so outside the shift.
	_, err = f.transactions.Post(ctx, dto.PostTransactionRequest{
		PaymentMethod: "CASH",
		Items:         []dto.TransactionItem{tableBillItem(99000)},
	}, 0)
	require.NoError(t, err)

	report, err := f.shifts.ZReport(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TransactionCount)
	assert.Equal(t, int64(60000), report.GrossSales)
	assert.Equal(t, int64(6600), report.Tax)
	assert.Equal(t, int64(66600), report.NetSales)
	assert.Equal(t, int64(60000), report.CashTendered)
	assert.Equal(t, int64(4500), report.ChangeGiven)
	assert.Equal(t, int64(255500), report.ExpectedCash)
	require.Len(t, report.ByMethod, 2)
	assert.Equal(t, models.MethodCash, report.ByMethod[0].Method)
	assert.Equal(t, models.MethodQRIS, report.ByMethod[1].Method)
	assert.Equal(t, int64(11100), report.ByMethod[1].Amount)

	closed, err := f.shifts.Close(ctx, shift.ID, 255000)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftClosed, closed.Shift.Status)
	assert.Equal(t, int64(255500), closed.Shift.ExpectedCash)
	assert.Equal(t, int64(255000), closed.Shift.CountedCash)
	assert.Equal(t, int64(-500), closed.Shift.Difference)
	assert.Equal(t, cashier.ID, closed.Shift.User.ID)
	require.NotNil(t, closed.Shift.ClosedAt)

	_, err = f.shifts.Close(ctx, shift.ID, 0)
	assert.ErrorIs(t, err, ErrShiftClosed)
	_, err = f.shifts.Current(ctx, cashier.ID)
	assert.ErrorIs(t, err, ErrShiftNotFound)

	// A new shift may be opened once the previous one is closed.
	_, err = f.shifts.Open(ctx, cashier.ID, 100000)
	assert.NoError(t, err)
}

func TestZReportUnknownShift(t *testing.T) {
	f := newFixture(t)
	_, err := f.shifts.ZReport(context.Background(), 42)
	assert.ErrorIs(t, err, ErrShiftNotFound)
	_, err = f.shifts.Close(context.Background(), 42, 0)
	assert.ErrorIs(t, err, ErrShiftNotFound)
}
