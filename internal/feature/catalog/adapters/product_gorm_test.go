package adapters

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"storefront/internal/feature/catalog/domain/entity"
	"storefront/internal/feature/catalog/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ProductModel{}))
	return db
}

func seedProducts(t *testing.T, repo *productGorm, n int, userID uint) []entity.Product {
	t.Helper()

	out := make([]entity.Product, 0, n)
	for i := 1; i <= n; i++ {
		p := &entity.Product{
			Title:       fmt.Sprintf("Product %d", i),
			Description: "Description",
			Price:       decimal.NewFromFloat(float64(i) + 0.5),
			ImageURL:    fmt.Sprintf("/images/%d.png", i),
			UserID:      userID,
		}
		require.NoError(t, repo.Create(context.Background(), p))
		out = append(out, *p)
	}
	return out
}

func TestProductGorm_CreateAndFind(t *testing.T) {
	t.Parallel()

	repo := NewProductGorm(setupTestDB(t))
	ctx := context.Background()

	p := &entity.Product{Title: "Book", Description: "A book", Price: decimal.RequireFromString("12.34"), ImageURL: "/images/b.png", UserID: 3}
	require.NoError(t, repo.Create(ctx, p))
	require.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Book", found.Title)
	assert.True(t, decimal.RequireFromString("12.34").Equal(found.Price))
	assert.Equal(t, uint(3), found.UserID)

	_, err = repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)
}

func TestProductGorm_ListPages(t *testing.T) {
	t.Parallel()

	repo := NewProductGorm(setupTestDB(t))
	ctx := context.Background()
	seedProducts(t, repo, 7, 1)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	tests := []struct {
		name      string
		offset    int
		wantTitle []string
	}{
		{name: "page 1", offset: 0, wantTitle: []string{"Product 1", "Product 2", "Product 3"}},
		{name: "page 2", offset: 3, wantTitle: []string{"Product 4", "Product 5", "Product 6"}},
		{name: "page 3", offset: 6, wantTitle: []string{"Product 7"}},
		{name: "past the end", offset: 9, wantTitle: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := repo.List(ctx, tt.offset, 3)
			require.NoError(t, err)

			titles := make([]string, 0, len(items))
			for _, p := range items {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.wantTitle, titles)
		})
	}
}

func TestProductGorm_ListByOwnerAndFindByIDs(t *testing.T) {
	t.Parallel()

	repo := NewProductGorm(setupTestDB(t))
	ctx := context.Background()
	mine := seedProducts(t, repo, 2, 1)
	theirs := seedProducts(t, repo, 3, 2)

	owned, err := repo.ListByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	found, err := repo.FindByIDs(ctx, []uint{mine[0].ID, theirs[2].ID, 999})
	require.NoError(t, err)
	assert.Len(t, found, 2)

	none, err := repo.FindByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestProductGorm_Update(t *testing.T) {
	t.Parallel()

	repo := NewProductGorm(setupTestDB(t))
	ctx := context.Background()
	p := seedProducts(t, repo, 1, 1)[0]

	p.Title = "Renamed"
	p.Price = decimal.RequireFromString("99.99")
	p.UserID = 5 // ownership is not writable through Update
	require.NoError(t, repo.Update(ctx, &p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Title)
	assert.Equal(t, "99.99", found.Price.StringFixed(2))
	assert.Equal(t, uint(1), found.UserID)

	missing := entity.Product{ID: 999, Title: "x"}
	assert.ErrorIs(t, repo.Update(ctx, &missing), usecase.ErrProductNotFound)
}

func TestProductGorm_Delete(t *testing.T) {
	t.Parallel()

	repo := NewProductGorm(setupTestDB(t))
	ctx := context.Background()
	p := seedProducts(t, repo, 1, 1)[0]

	require.NoError(t, repo.Delete(ctx, p.ID))
	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, usecase.ErrProductNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, p.ID), usecase.ErrProductNotFound)
}
