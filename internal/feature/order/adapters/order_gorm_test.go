package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/feature/order/domain/entity"
	"storefront/internal/feature/order/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&OrderModel{}, &OrderItemModel{}))
	return db
}

func newOrder(userID uint, sessionID string) *entity.Order {
	o := &entity.Order{
		UserID:           userID,
		UserEmail:        "buyer@example.com",
		PaymentSessionID: sessionID,
		Items: []entity.Item{
			{ProductID: 1, Title: "Mug", Price: decimal.RequireFromString("12.99"), Quantity: 2},
			{ProductID: 2, Title: "Tea", Price: decimal.RequireFromString("5.00"), Quantity: 1},
		},
	}
	o.TotalAmount = o.Total()
	return o
}

func TestOrderGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewOrderGorm(setupTestDB(t))
	ctx := context.Background()

	o := newOrder(7, "cs_1")
	require.NoError(t, repo.Create(ctx, o))
	require.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(7), found.UserID)
	assert.Equal(t, "30.98", found.TotalAmount.StringFixed(2))
	require.Len(t, found.Items, 2)
	assert.Equal(t, "Mug", found.Items[0].Title)
	assert.Equal(t, 2, found.Items[0].Quantity)
	assert.Equal(t, "Tea", found.Items[1].Title)

	bySession, err := repo.FindByPaymentSessionID(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, bySession.ID)
}

func TestOrderGorm_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewOrderGorm(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), 1)
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)

	_, err = repo.FindByPaymentSessionID(context.Background(), "cs_missing")
	assert.ErrorIs(t, err, usecase.ErrOrderNotFound)
}

func TestOrderGorm_DuplicateSession(t *testing.T) {
	t.Parallel()

	repo := NewOrderGorm(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newOrder(7, "cs_1")))
	err := repo.Create(ctx, newOrder(7, "cs_1"))
	assert.ErrorIs(t, err, usecase.ErrOrderExists)
}

func TestOrderGorm_ListByUserNewestFirst(t *testing.T) {
	t.Parallel()

	repo := NewOrderGorm(setupTestDB(t))
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, sid := range []string{"cs_a", "cs_b", "cs_c"} {
		o := newOrder(7, sid)
		o.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, repo.Create(ctx, o))
	}
	require.NoError(t, repo.Create(ctx, newOrder(8, "cs_other")))

	list, err := repo.ListByUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "cs_c", list[0].PaymentSessionID)
	assert.Equal(t, "cs_a", list[2].PaymentSessionID)
	assert.Len(t, list[0].Items, 2)
}
