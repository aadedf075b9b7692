package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

func testConfig() settings.SystemConfig {
	return settings.SystemConfig{
		StoreName:         "Test Store",
		Currency:          "USD",
		LowStockThreshold: 10,
		TaxRate:           15,
		PaymentMethods:    []string{"Cash", "Card"},
	}
}

func newLedgerService(t *testing.T) (*ledger.Service, *audit.Service, *store.Store) {
	t.Helper()
	st := store.New(testConfig())
	auditService := audit.NewService(st.Audit())
	return ledger.NewService(st.Ledger(), auditService, nil), auditService, st
}

func actorContext() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-1", Name: "Test Clerk"})
}

func TestRegisterRecordsInitialHistory(t *testing.T) {
	svc, _, _ := newLedgerService(t)
	ctx := actorContext()

	product, err := svc.Register(ctx, ledger.RegisterInput{
		Name:         "Claw Hammer",
		Category:     "Tools",
		Price:        19.99,
		Cost:         11.50,
		InitialStock: 15,
		SKU:          "HAM-001",
		Barcode:      "4006381333931",
		BoxQuantity:  12,
		Location:     ledger.LocationShop,
	})
	require.NoError(t, err)
	require.Equal(t, 15, product.Stock)
	require.Len(t, product.History, 1)
	require.Equal(t, ledger.ReasonInitial, product.History[0].Reason)
	require.Equal(t, 15, product.History[0].ChangeAmount)

	stored, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, product.Stock, stored.Stock)
}

func TestRegisterZeroInitialStockHasNoMovement(t *testing.T) {
	svc, _, _ := newLedgerService(t)

	product, err := svc.Register(actorContext(), ledger.RegisterInput{
		Name: "Wood Screws", Category: "Fasteners", SKU: "SCR-010",
		BoxQuantity: 1, Location: ledger.LocationWarehouse,
	})
	require.NoError(t, err)
	require.Equal(t, 0, product.Stock)
	require.Len(t, product.History, 1)
	require.Equal(t, 0, product.History[0].ChangeAmount)
}

func TestRegisterValidatesInput(t *testing.T) {
	svc, _, _ := newLedgerService(t)
	ctx := actorContext()

	_, err := svc.Register(ctx, ledger.RegisterInput{Name: "X", SKU: "X", BoxQuantity: 1, Location: "Truck"})
	require.ErrorIs(t, err, ledger.ErrInvalidLocation)

	_, err = svc.Register(ctx, ledger.RegisterInput{Name: "X", SKU: "X", InitialStock: -1, BoxQuantity: 1, Location: ledger.LocationShop})
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)

	_, err = svc.Register(ctx, ledger.RegisterInput{Name: "X", SKU: "X", BoxQuantity: 0, Location: ledger.LocationShop})
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)
}

func TestAdjustRecordsSignedDelta(t *testing.T) {
	svc, auditService, _ := newLedgerService(t)
	ctx := actorContext()

	product, err := svc.Register(ctx, ledger.RegisterInput{
		Name: "Pipe Wrench", Category: "Tools", SKU: "WRE-002",
		InitialStock: 15, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	updated, err := svc.Adjust(ctx, ledger.AdjustInput{ProductID: product.ID, TargetStock: 20, Note: "count correction"})
	require.NoError(t, err)
	require.Equal(t, 20, updated.Stock)
	require.Equal(t, ledger.ReasonAdjustment, updated.History[0].Reason)
	require.Equal(t, 5, updated.History[0].ChangeAmount)

	down, err := svc.Adjust(ctx, ledger.AdjustInput{ProductID: product.ID, TargetStock: 18})
	require.NoError(t, err)
	require.Equal(t, -2, down.History[0].ChangeAmount)

	entries, err := auditService.List(ctx, audit.Filter{Type: audit.TypeUpdate})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, audit.SeverityWarning, entries[0].Severity)
}

func TestAdjustToSameQuantityIsNoOp(t *testing.T) {
	svc, auditService, _ := newLedgerService(t)
	ctx := actorContext()

	product, err := svc.Register(ctx, ledger.RegisterInput{
		Name: "Nails", Category: "Fasteners", SKU: "NAI-001",
		InitialStock: 9, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	updated, err := svc.Adjust(ctx, ledger.AdjustInput{ProductID: product.ID, TargetStock: 9})
	require.NoError(t, err)
	require.Len(t, updated.History, 1)

	entries, err := auditService.List(ctx, audit.Filter{Type: audit.TypeUpdate})
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestAdjustUnknownProduct(t *testing.T) {
	svc, _, _ := newLedgerService(t)
	_, err := svc.Adjust(actorContext(), ledger.AdjustInput{ProductID: "missing", TargetStock: 5})
	require.ErrorIs(t, err, ledger.ErrProductNotFound)
}

func TestListFiltersByLocation(t *testing.T) {
	svc, _, _ := newLedgerService(t)
	ctx := actorContext()

	_, err := svc.Register(ctx, ledger.RegisterInput{Name: "Shop Item", Category: "Tools", SKU: "A-1", BoxQuantity: 1, Location: ledger.LocationShop})
	require.NoError(t, err)
	_, err = svc.Register(ctx, ledger.RegisterInput{Name: "Warehouse Item", Category: "Tools", SKU: "A-2", BoxQuantity: 1, Location: ledger.LocationWarehouse})
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	shop, err := svc.List(ctx, ledger.LocationShop)
	require.NoError(t, err)
	require.Len(t, shop, 1)
	require.Equal(t, "Shop Item", shop[0].Name)

	_, err = svc.List(ctx, "Truck")
	require.ErrorIs(t, err, ledger.ErrInvalidLocation)
}

func TestLowStockUsesStrictThreshold(t *testing.T) {
	svc, _, _ := newLedgerService(t)
	ctx := actorContext()

	_, err := svc.Register(ctx, ledger.RegisterInput{Name: "Low", Category: "Tools", SKU: "L-1", InitialStock: 9, BoxQuantity: 1, Location: ledger.LocationShop})
	require.NoError(t, err)
	_, err = svc.Register(ctx, ledger.RegisterInput{Name: "At Threshold", Category: "Tools", SKU: "L-2", InitialStock: 10, BoxQuantity: 1, Location: ledger.LocationShop})
	require.NoError(t, err)

	low, err := svc.LowStock(ctx, 10)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, "Low", low[0].Name)
}
