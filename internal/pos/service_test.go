package pos_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

type posFixture struct {
	store  *store.Store
	ledger *ledger.Service
	pos    *pos.Service
	audit  *audit.Service
}

func newPOSFixture(t *testing.T, cfg settings.SystemConfig) *posFixture {
	t.Helper()
	st := store.New(cfg)
	auditService := audit.NewService(st.Audit())
	return &posFixture{
		store:  st,
		ledger: ledger.NewService(st.Ledger(), auditService, nil),
		pos:    pos.NewService(st.POS(), st.Settings(), auditService, nil),
		audit:  auditService,
	}
}

func defaultConfig() settings.SystemConfig {
	return settings.SystemConfig{
		StoreName:         "Test Store",
		Currency:          "USD",
		LowStockThreshold: 10,
		TaxRate:           15,
		PaymentMethods:    []string{"Cash", "Card"},
	}
}

func actorContext() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-1", Name: "Cashier One"})
}

func (f *posFixture) register(t *testing.T, name, sku string, stock int, price float64) ledger.Product {
	t.Helper()
	product, err := f.ledger.Register(actorContext(), ledger.RegisterInput{
		Name: name, Category: "Tools", SKU: sku, Price: price, Cost: price / 2,
		InitialStock: stock, BoxQuantity: 1, Location: ledger.LocationShop,
	})
	require.NoError(t, err)
	return product
}

func TestCheckoutComputesTotals(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)

	sale, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines:         []pos.CartLine{{ProductID: hammer.ID, Quantity: 3, Price: 19.99, Cost: 10}},
		PaymentMethod: "Card",
	})
	require.NoError(t, err)
	require.InDelta(t, 59.97, sale.Subtotal, 1e-9)
	require.InDelta(t, 9.00, sale.Tax, 1e-9)
	require.InDelta(t, 68.97, sale.Total, 1e-9)
	require.Equal(t, "Card", sale.PaymentMethod)
	require.Equal(t, "u-1", sale.CashierID)

	product, err := f.ledger.Get(actorContext(), hammer.ID)
	require.NoError(t, err)
	require.Equal(t, 12, product.Stock)
	require.Equal(t, ledger.ReasonSale, product.History[0].Reason)
	require.Equal(t, sale.ID, product.History[0].ReferenceID)

	stored, err := f.pos.Sale(actorContext(), sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.Total, stored.Total)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	_, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{})
	require.ErrorIs(t, err, pos.ErrEmptyCart)
}

func TestCheckoutRejectsNonPositiveQuantity(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)
	_, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines: []pos.CartLine{{ProductID: hammer.ID, Quantity: 0, Price: 19.99}},
	})
	require.ErrorIs(t, err, ledger.ErrInvalidQuantity)
}

func TestCheckoutAbortsWhollyOnShortfall(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)
	tape := f.register(t, "Tape Measure", "TAP-001", 2, 7.50)

	_, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines: []pos.CartLine{
			{ProductID: hammer.ID, Quantity: 3, Price: 19.99},
			{ProductID: tape.ID, Quantity: 5, Price: 7.50},
		},
	})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	// No partial application: the first line's decrement is rolled back.
	p, err := f.ledger.Get(actorContext(), hammer.ID)
	require.NoError(t, err)
	require.Equal(t, 15, p.Stock)
	require.Len(t, p.History, 1)

	sales, err := f.pos.Sales(actorContext())
	require.NoError(t, err)
	require.Empty(t, sales)
}

func TestCheckoutFallsBackToFirstPaymentMethod(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)

	sale, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines:         []pos.CartLine{{ProductID: hammer.ID, Quantity: 1, Price: 19.99}},
		PaymentMethod: "Crypto",
	})
	require.NoError(t, err)
	require.Equal(t, "Cash", sale.PaymentMethod)
}

func TestCheckoutWithoutConfiguredPaymentMethods(t *testing.T) {
	cfg := defaultConfig()
	cfg.PaymentMethods = nil
	f := newPOSFixture(t, cfg)
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)

	_, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines: []pos.CartLine{{ProductID: hammer.ID, Quantity: 1, Price: 19.99}},
	})
	require.ErrorIs(t, err, pos.ErrNoPaymentMethods)
}

func TestCheckoutWritesTransactionAudit(t *testing.T) {
	f := newPOSFixture(t, defaultConfig())
	hammer := f.register(t, "Hammer", "HAM-001", 15, 19.99)

	_, err := f.pos.Checkout(actorContext(), pos.CheckoutInput{
		Lines: []pos.CartLine{{ProductID: hammer.ID, Quantity: 2, Price: 19.99}},
	})
	require.NoError(t, err)

	entries, err := f.audit.List(actorContext(), audit.Filter{Type: audit.TypeTransaction})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, audit.SeveritySuccess, entries[0].Severity)
	require.Contains(t, entries[0].Details, "Sale Completed")
}
