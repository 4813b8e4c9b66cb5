package purchases

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	ref, err := NewReference(time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^BMS-20261017-[A-Z]{6}$`), ref)
}

func TestGetPurchase_Visibility(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	svc := NewService(repo)

	p := &Purchase{
		ID: "p-1", Reference: "BMS-1", Kind: KindResale,
		BuyerLogin: "ana", SellerLogin: "bob", EventID: "ev",
		Subtotal: decimal.NewFromInt(50), Total: decimal.NewFromInt(50),
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, p))

	for _, who := range []string{"ana", "bob"} {
		got, err := svc.GetPurchase(ctx, "p-1", who, false)
		require.NoError(t, err)
		assert.Equal(t, "p-1", got.ID)
	}
	_, err := svc.GetPurchase(ctx, "p-1", "eve", false)
	assert.ErrorIs(t, err, ErrNotYourPurchase)
	_, err = svc.GetPurchase(ctx, "p-1", "root", true)
	assert.NoError(t, err)
	_, err = svc.GetPurchase(ctx, "missing", "ana", false)
	assert.ErrorIs(t, err, ErrPurchaseNotFound)
}

func TestListPurchases_Filters(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &Purchase{ID: "1", Kind: KindPrimary, BuyerLogin: "ana", EventID: "e1", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, repo.Create(ctx, &Purchase{ID: "2", Kind: KindResale, BuyerLogin: "ana", EventID: "e2", CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &Purchase{ID: "3", Kind: KindPrimary, BuyerLogin: "bob", EventID: "e1", CreatedAt: now}))

	list, err := NewService(repo).ListPurchases(ctx, ListQuery{BuyerLogin: "ana"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "2", list[0].ID, "newest first")

	list, err = repo.List(ctx, ListQuery{EventID: "e1", Kind: KindPrimary})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestPlatformFees(t *testing.T) {
	p := Purchase{ServiceFee: decimal.RequireFromString("15.50"), IssuanceFees: decimal.NewFromInt(10)}
	assert.True(t, p.PlatformFees().Equal(decimal.RequireFromString("25.5")))
	assert.True(t, KindCounteroffer.IsSecondary())
	assert.False(t, KindPrimary.IsSecondary())
}

func TestMarkRefunded_OnlyPlatformSales(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, &Purchase{ID: "1", Kind: KindPrimary, EventID: "e1", Status: StatusApproved, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &Purchase{ID: "2", Kind: KindResale, EventID: "e1", Status: StatusApproved, CreatedAt: now}))
	require.NoError(t, repo.Create(ctx, &Purchase{ID: "3", Kind: KindPrimary, EventID: "e2", Status: StatusApproved, CreatedAt: now}))

	n, err := repo.MarkRefunded(ctx, "e1", now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	p, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, StatusRefunded, p.Status)
	require.NotNil(t, p.RefundedAt)

	p, err = repo.Get(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, p.Status)
}
