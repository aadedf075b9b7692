package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/store"
)

// Walks one product through its whole life: registration, a sale, a
// boxed receipt and a manual correction, then checks the count and the
// history line up.
func TestProductLifecycle(t *testing.T) {
	st := store.New(testConfig())
	ctx := actorContext()
	auditService := audit.NewService(st.Audit())
	ledgerService := ledger.NewService(st.Ledger(), auditService, nil)
	posService := pos.NewService(st.POS(), st.Settings(), auditService, nil)
	receivingService := receiving.NewService(st.Receiving(), auditService, nil)

	product, err := ledgerService.Register(ctx, ledger.RegisterInput{
		Name: "Claw Hammer", Category: "Tools", SKU: "HAM-001", Price: 19.99, Cost: 11,
		InitialStock: 15, BoxQuantity: 5, Location: ledger.LocationShop,
	})
	require.NoError(t, err)

	_, err = posService.Checkout(ctx, pos.CheckoutInput{
		Lines: []pos.CartLine{{ProductID: product.ID, Quantity: 3, Price: 19.99}},
	})
	require.NoError(t, err)

	result, err := receivingService.ReceiveBatch(ctx, []receiving.BatchLine{
		{ProductID: product.ID, Quantity: 2, IsBox: true},
	})
	require.NoError(t, err)
	require.Equal(t, 10, result.UnitsAdded)

	final, err := ledgerService.Adjust(ctx, ledger.AdjustInput{ProductID: product.ID, TargetStock: 20})
	require.NoError(t, err)

	require.Equal(t, 20, final.Stock)
	require.Len(t, final.History, 4)

	// Newest first: Adjustment, Receipt, Sale, Initial.
	reasons := []ledger.ChangeReason{
		final.History[0].Reason, final.History[1].Reason,
		final.History[2].Reason, final.History[3].Reason,
	}
	require.Equal(t, []ledger.ChangeReason{
		ledger.ReasonAdjustment, ledger.ReasonReceipt, ledger.ReasonSale, ledger.ReasonInitial,
	}, reasons)

	// The stock equals the sum of all recorded changes.
	sum := 0
	for _, entry := range final.History {
		sum += entry.ChangeAmount
	}
	require.Equal(t, final.Stock, sum)
	require.Equal(t, final.Stock, final.History[0].NewStock)
}
