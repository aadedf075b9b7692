package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

func testConfig() settings.SystemConfig {
	return settings.SystemConfig{
		StoreName: "Test Store", Currency: "USD",
		LowStockThreshold: 10, TaxRate: 15, PaymentMethods: []string{"Cash", "Card"},
	}
}

func actorContext() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-1", Name: "Clerk"})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	st := store.New(testConfig())
	ctx := actorContext()
	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)

	product, err := ledgerService.Register(ctx, ledger.RegisterInput{
		Name: "Hammer", Category: "Tools", SKU: "HAM-001",
		InitialStock: 5, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = st.Ledger().WithTx(ctx, func(ctx context.Context, tx ledger.TxRepository) error {
		p, err := tx.GetProductForUpdate(product.ID)
		require.NoError(t, err)
		p.Stock = 999
		require.NoError(t, tx.SaveProduct(p))
		return boom
	})
	require.ErrorIs(t, err, boom)

	unchanged, err := st.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 5, unchanged.Stock)
}

func TestCommitBumpsRevision(t *testing.T) {
	st := store.New(testConfig())
	ctx := actorContext()
	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)

	product, err := ledgerService.Register(ctx, ledger.RegisterInput{
		Name: "Hammer", Category: "Tools", SKU: "HAM-001",
		InitialStock: 5, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	first, err := st.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)

	_, err = ledgerService.Adjust(ctx, ledger.AdjustInput{ProductID: product.ID, TargetStock: 7})
	require.NoError(t, err)

	second, err := st.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Greater(t, second.Revision, first.Revision)
}

func TestReadsReturnCopies(t *testing.T) {
	st := store.New(testConfig())
	ctx := actorContext()
	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)

	product, err := ledgerService.Register(ctx, ledger.RegisterInput{
		Name: "Hammer", Category: "Tools", SKU: "HAM-001",
		InitialStock: 5, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	read, err := st.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)
	read.Stock = 999
	read.History[0].ChangeAmount = 999

	again, err := st.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 5, again.Stock)
	require.Equal(t, 5, again.History[0].ChangeAmount)
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	st := store.New(testConfig())
	ctx := actorContext()
	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)
	posService := pos.NewService(st.POS(), st.Settings(), auditService, nil)
	receivingService := receiving.NewService(st.Receiving(), auditService, nil)
	authService := auth.NewService(st.Auth(), auditService)

	product, err := ledgerService.Register(ctx, ledger.RegisterInput{
		Name: "Hammer", Category: "Tools", SKU: "HAM-001", Price: 19.99,
		InitialStock: 15, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)
	sale, err := posService.Checkout(ctx, pos.CheckoutInput{
		Lines: []pos.CartLine{{ProductID: product.ID, Quantity: 3, Price: 19.99}},
	})
	require.NoError(t, err)
	_, err = receivingService.RegisterIncoming(ctx, "Acme", "Dan", []receiving.IncomingItem{{ProductID: product.ID, Name: "Hammer", ExpectedQty: 10}})
	require.NoError(t, err)
	user, err := authService.CreateUser(ctx, auth.CreateUserInput{
		Name: "Jane Admin", Username: "jane", Password: "supersecret", Role: auth.RoleAdmin,
	})
	require.NoError(t, err)

	require.NoError(t, st.Save(dir))

	restored := store.New(testConfig())
	require.NoError(t, restored.Load(dir))

	p, err := restored.Ledger().GetProduct(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 12, p.Stock)
	require.Len(t, p.History, 2)
	require.Equal(t, ledger.ReasonSale, p.History[0].Reason)

	s, err := restored.POS().GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.Total, s.Total)
	require.Len(t, s.Items, 1)

	incoming, err := restored.Receiving().ListIncoming(ctx)
	require.NoError(t, err)
	require.Len(t, incoming, 1)

	// Credentials survive the round trip even though the public JSON
	// shape drops the hash.
	restoredAuth := auth.NewService(restored.Auth(), nil)
	_, err = restoredAuth.Authenticate(ctx, "jane", "supersecret")
	require.NoError(t, err)
	_, err = restored.Auth().GetUser(ctx, user.ID)
	require.NoError(t, err)

	logs, err := restored.Audit().ListLogs(ctx, audit.Filter{})
	require.NoError(t, err)
	require.NotEmpty(t, logs)
}

func TestLoadMissingSnapshotKeepsSeed(t *testing.T) {
	st := store.New(testConfig())
	require.NoError(t, st.Load(t.TempDir()))

	cfg, err := st.Settings().SystemConfig(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Test Store", cfg.StoreName)
}

func TestSaveSkipsWhenClean(t *testing.T) {
	dir := t.TempDir()
	st := store.New(testConfig())
	// Nothing changed since construction; Save writes no file.
	require.NoError(t, st.Save(dir))
	other := store.New(testConfig())
	require.NoError(t, other.Load(dir))
}
