package audit_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

func newAuditService(t *testing.T) *audit.Service {
	t.Helper()
	st := store.New(settings.SystemConfig{
		StoreName: "Test Store", Currency: "USD",
		LowStockThreshold: 10, TaxRate: 15, PaymentMethods: []string{"Cash"},
	})
	return audit.NewService(st.Audit())
}

func actorContext() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-9", Name: "Admin"})
}

func TestRecordStampsActorAndDefaults(t *testing.T) {
	svc := newAuditService(t)
	ctx := actorContext()

	err := svc.Record(ctx, audit.TypeScan, "HAM-001", "Barcode scanned.", "")
	require.NoError(t, err)

	entries, err := svc.List(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "u-9", entries[0].UserID)
	require.Equal(t, "Admin", entries[0].UserName)
	require.Equal(t, audit.SeverityInfo, entries[0].Severity)
	require.NotEmpty(t, entries[0].ID)
	require.False(t, entries[0].Timestamp.IsZero())
}

func TestRecordRequiresTypeAndTarget(t *testing.T) {
	svc := newAuditService(t)
	require.ErrorIs(t, svc.Record(actorContext(), "", "x", "", audit.SeverityInfo), audit.ErrEntryRequired)
	require.ErrorIs(t, svc.Record(actorContext(), audit.TypeScan, "", "", audit.SeverityInfo), audit.ErrEntryRequired)
}

func TestRetentionCapKeepsNewestEntries(t *testing.T) {
	svc := newAuditService(t)
	ctx := actorContext()

	for i := 0; i < audit.RetentionLimit+25; i++ {
		err := svc.Record(ctx, audit.TypeSystem, "Settings", fmt.Sprintf("event %d", i), audit.SeverityInfo)
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, audit.Filter{})
	require.NoError(t, err)
	require.Len(t, entries, audit.RetentionLimit)
	// Newest first; the oldest 25 were evicted.
	require.Equal(t, fmt.Sprintf("event %d", audit.RetentionLimit+24), entries[0].Details)
	require.Equal(t, "event 25", entries[audit.RetentionLimit-1].Details)
}

func TestListFiltersByTypeAndLimit(t *testing.T) {
	svc := newAuditService(t)
	ctx := actorContext()

	require.NoError(t, svc.Record(ctx, audit.TypeLogin, "Auth", "login", audit.SeveritySuccess))
	require.NoError(t, svc.Record(ctx, audit.TypeSystem, "Settings", "update", audit.SeverityInfo))
	require.NoError(t, svc.Record(ctx, audit.TypeLogin, "Auth", "logout", audit.SeverityInfo))

	logins, err := svc.List(ctx, audit.Filter{Type: audit.TypeLogin})
	require.NoError(t, err)
	require.Len(t, logins, 2)
	require.Equal(t, "logout", logins[0].Details)

	limited, err := svc.List(ctx, audit.Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}
