package inventory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxe-shop/backend/internal/models"
	"github.com/luxe-shop/backend/internal/testutil"
)

func TestReserveDecrements(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := testutil.SeedProduct(t, db, "wallet", "10.00", 5)

	require.NoError(t, Reserve(db, p.ID, 2))

	inv, err := Get(db, p.ID)
	require.NoError(t, err)
	require.Equal(t, 3, inv.StockCount)
}

func TestReserveNeverGoesNegative(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := testutil.SeedProduct(t, db, "wallet", "10.00", 5)

	require.NoError(t, Reserve(db, p.ID, 3))
	require.ErrorIs(t, Reserve(db, p.ID, 3), ErrInsufficientStock)

	inv, err := Get(db, p.ID)
	require.NoError(t, err)
	require.Equal(t, 2, inv.StockCount)
}

func TestReserveMissingInventoryRow(t *testing.T) {
	db := testutil.NewTestDB(t)

	product := models.Product{Name: "no stock row", Description: "x"}
	require.NoError(t, db.Create(&product).Error)

	require.ErrorIs(t, Reserve(db, product.ID, 1), ErrInsufficientStock)
}

func TestReserveExactRemainder(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := testutil.SeedProduct(t, db, "wallet", "10.00", 4)

	require.NoError(t, Reserve(db, p.ID, 4))

	inv, err := Get(db, p.ID)
	require.NoError(t, err)
	require.Equal(t, 0, inv.StockCount)

	require.ErrorIs(t, Reserve(db, p.ID, 1), ErrInsufficientStock)
}

func TestSetStockUpdatesExistingRow(t *testing.T) {
	db := testutil.NewTestDB(t)
	p := testutil.SeedProduct(t, db, "wallet", "10.00", 5)

	inv, err := SetStock(db, p.ID, 42)
	require.NoError(t, err)
	require.Equal(t, 42, inv.StockCount)

	got, err := Get(db, p.ID)
	require.NoError(t, err)
	require.Equal(t, 42, got.StockCount)
}

func TestSetStockCreatesMissingRow(t *testing.T) {
	db := testutil.NewTestDB(t)

	product := models.Product{Name: "fresh", Description: "x"}
	require.NoError(t, db.Create(&product).Error)

	inv, err := SetStock(db, product.ID, 7)
	require.NoError(t, err)
	require.Equal(t, 7, inv.StockCount)
	require.Equal(t, product.ID, inv.ProductID)
}
