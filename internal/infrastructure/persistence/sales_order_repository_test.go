package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/erp/soreconcile/internal/domain/shared"
	"github.com/erp/soreconcile/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func orderNames(orders []trade.SalesOrder) []string {
	names := make([]string, len(orders))
	for i, o := range orders {
		names[i] = o.Name
	}
	return names
}

func TestGormSalesOrderRepository_FindByID(t *testing.T) {
	db := setupLedgerDB(t)
	seed := newLedgerSeed(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	order := seed.order("S00042", partnerID)

	t.Run("finds existing order", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, "S00042", found.Name)
		assert.Equal(t, partnerID, found.PartnerID)
		assert.Equal(t, trade.OrderStateSale, found.State)
	})

	t.Run("returns ErrNotFound for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSalesOrderRepository_FindByNameMatch(t *testing.T) {
	db := setupLedgerDB(t)
	seed := newLedgerSeed(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	seed.order("S00042-B", partnerID)
	seed.order("S00042", partnerID)
	seed.order("S00100", partnerID)
	seed.order("s10_0", partnerID)

	t.Run("exact match comes first", func(t *testing.T) {
		orders, err := repo.FindByNameMatch(ctx, "S00042")
		require.NoError(t, err)
		assert.Equal(t, []string{"S00042", "S00042-B"}, orderNames(orders))
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		orders, err := repo.FindByNameMatch(ctx, "s00100")
		require.NoError(t, err)
		assert.Equal(t, []string{"S00100"}, orderNames(orders))
	})

	t.Run("wildcards in the reference are literal", func(t *testing.T) {
		orders, err := repo.FindByNameMatch(ctx, "S_0")
		require.NoError(t, err)
		assert.Empty(t, orders)

		orders, err = repo.FindByNameMatch(ctx, "10_0")
		require.NoError(t, err)
		assert.Equal(t, []string{"s10_0"}, orderNames(orders))
	})

	t.Run("no match returns empty slice", func(t *testing.T) {
		orders, err := repo.FindByNameMatch(ctx, "S99999")
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestGormSalesOrderRepository_FindByNameContaining(t *testing.T) {
	db := setupLedgerDB(t)
	seed := newLedgerSeed(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	seed.order("S00123", partnerID)
	seed.order("SO-2026-00123", partnerID)
	seed.order("S00456", partnerID)

	orders, err := repo.FindByNameContaining(ctx, "00123")
	require.NoError(t, err)
	assert.Equal(t, []string{"S00123", "SO-2026-00123"}, orderNames(orders))
}

func TestGormSalesOrderRepository_FindByInvoice(t *testing.T) {
	db := setupLedgerDB(t)
	seed := newLedgerSeed(t, db)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	partnerID := uuid.New()
	first := seed.order("S00002", partnerID)
	second := seed.order("S00001", partnerID)
	seed.order("S00003", partnerID)
	inv := seed.invoice("INV/2026/00001", partnerID, "100", time.Now())
	seed.link(first.ID, inv.ID)
	seed.link(second.ID, inv.ID)

	t.Run("returns linked orders by name", func(t *testing.T) {
		orders, err := repo.FindByInvoice(ctx, inv.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"S00001", "S00002"}, orderNames(orders))
	})

	t.Run("unlinked invoice has no orders", func(t *testing.T) {
		orders, err := repo.FindByInvoice(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestContainsPattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"S00042", "%s00042%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
