package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/shared"
)

var testActor = shared.Actor{ID: "u-1", Name: "Test Clerk"}

func TestApplyPrependsNewestFirst(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	p := Product{ID: "p-1", Name: "Hammer", Stock: 0}

	p, err := Apply(p, 15, ReasonInitial, testActor, "", now)
	require.NoError(t, err)
	p, err = Apply(p, -3, ReasonSale, testActor, "S-1", now.Add(time.Minute))
	require.NoError(t, err)

	require.Equal(t, 12, p.Stock)
	require.Len(t, p.History, 2)
	require.Equal(t, ReasonSale, p.History[0].Reason)
	require.Equal(t, -3, p.History[0].ChangeAmount)
	require.Equal(t, 12, p.History[0].NewStock)
	require.Equal(t, "S-1", p.History[0].ReferenceID)
	require.Equal(t, ReasonInitial, p.History[1].Reason)
	require.Equal(t, testActor.ID, p.History[0].UserID)
	require.Equal(t, testActor.Name, p.History[0].UserName)
}

func TestApplyRejectsNegativeStock(t *testing.T) {
	p := Product{ID: "p-1", Stock: 2}
	_, err := Apply(p, -3, ReasonSale, testActor, "S-1", time.Now())
	require.ErrorIs(t, err, ErrInsufficientStock)
}

func TestApplyZeroFloorIsAllowed(t *testing.T) {
	p := Product{ID: "p-1", Stock: 2}
	p, err := Apply(p, -2, ReasonSale, testActor, "S-1", time.Now())
	require.NoError(t, err)
	require.Equal(t, 0, p.Stock)
}

func TestApplyTrimsHistoryToCap(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := Product{ID: "p-1"}
	var err error
	for i := 0; i < HistoryCap+10; i++ {
		p, err = Apply(p, 1, ReasonReceipt, testActor, "", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	require.Len(t, p.History, HistoryCap)
	// Newest entry first, oldest entries evicted.
	require.Equal(t, HistoryCap+10, p.History[0].NewStock)
	require.Equal(t, 11, p.History[HistoryCap-1].NewStock)
}

func TestApplyHistoryEntriesAreConsistent(t *testing.T) {
	now := time.Now().UTC()
	p := Product{ID: "p-1"}
	deltas := []int{15, -3, 10, -5, 3}
	var err error
	for i, d := range deltas {
		p, err = Apply(p, d, ReasonAdjustment, testActor, "", now.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}
	// Each entry's newStock equals the previous entry's newStock plus
	// its own change, walking oldest to newest.
	running := 0
	for i := len(p.History) - 1; i >= 0; i-- {
		running += p.History[i].ChangeAmount
		require.Equal(t, running, p.History[i].NewStock)
	}
	require.Equal(t, p.Stock, p.History[0].NewStock)
}
