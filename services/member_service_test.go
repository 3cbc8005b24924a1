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

func TestCreateMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.members.Create(ctx, dto.CreateMemberRequest{Name: " Budi ", Phone: "0812"})
	require.NoError(t, err)
	assert.Equal(t, "Budi", member.Name)
	assert.Equal(t, models.TierBronze, member.Tier)
	assert.True(t, strings.HasPrefix(member.Code, "MBR"))
	assert.Len(t, member.Code, 11)

	gold, err := f.members.Create(ctx, dto.CreateMemberRequest{Code: "vip01", Name: "Sari", Tier: models.TierGold})
	require.NoError(t, err)
	assert.Equal(t, "VIP01", gold.Code)

	_, err = f.members.Create(ctx, dto.CreateMemberRequest{Code: "VIP01", Name: "Other"})
	assert.ErrorIs(t, err, ErrMemberExists)

	list, err := f.members.List(ctx, "sar")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, gold.ID, list[0].ID)

	list, err = f.members.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.members.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestTopUpAndLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.member(t, 0, 10000)

	updated, err := f.members.TopUp(ctx, member.ID, 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), updated.Wallet)

	_, err = f.members.TopUp(ctx, 999, 50000)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	_, err = f.transactions.Post(ctx, dto.PostTransactionRequest{
		MemberID:      &member.ID,
		PaymentMethod: "WALLET",
		Items:         []dto.TransactionItem{tableBillItem(20000)},
	}, 0)
	require.NoError(t, err)

	entries, err := f.members.Ledger(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.LedgerEarn, entries[0].Type)
	assert.Equal(t, int64(2), entries[0].Points)
	assert.Equal(t, models.LedgerTopUp, entries[1].Type)
	assert.Equal(t, int64(50000), entries[1].Points)
	assert.Equal(t, int64(60000), entries[1].BalanceAfter)

	var stored models.Member
	f.reload(t, &stored, member.ID)
	assert.Equal(t, int64(60000-22200), stored.Wallet)

	_, err = f.members.Ledger(ctx, 999)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
