package settings_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
	"github.com/ironmart/ironmart/internal/store"
)

func newSettingsService(t *testing.T) *settings.Service {
	t.Helper()
	st := store.New(settings.SystemConfig{
		StoreName: "Seed Store", Currency: "USD",
		LowStockThreshold: 10, TaxRate: 15, PaymentMethods: []string{"Cash"},
	})
	return settings.NewService(st.Settings(), audit.NewService(st.Audit()))
}

func actorContext() context.Context {
	return shared.ContextWithActor(context.Background(), shared.Actor{ID: "u-0", Name: "Root"})
}

func TestConfigRoundTrip(t *testing.T) {
	svc := newSettingsService(t)
	ctx := actorContext()

	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	require.Equal(t, "Seed Store", cfg.StoreName)

	cfg.TaxRate = 18
	cfg.PaymentMethods = []string{"Cash", "Card", "Mobile Money"}
	updated, err := svc.UpdateConfig(ctx, cfg)
	require.NoError(t, err)
	require.Equal(t, 18.0, updated.TaxRate)

	reread, err := svc.Config(ctx)
	require.NoError(t, err)
	require.Len(t, reread.PaymentMethods, 3)
}

func TestBranchCRUD(t *testing.T) {
	svc := newSettingsService(t)
	ctx := actorContext()

	branch, err := svc.CreateBranch(ctx, settings.BranchInput{Name: "Eastside", Phone: "555-0101"})
	require.NoError(t, err)
	require.NotEmpty(t, branch.ID)

	renamed, err := svc.UpdateBranch(ctx, branch.ID, settings.BranchInput{Name: "East Side", Email: "east@example.com"})
	require.NoError(t, err)
	require.Equal(t, "East Side", renamed.Name)

	branches, err := svc.Branches(ctx)
	require.NoError(t, err)
	require.Len(t, branches, 1)

	require.NoError(t, svc.DeleteBranch(ctx, branch.ID))
	require.ErrorIs(t, svc.DeleteBranch(ctx, branch.ID), settings.ErrBranchNotFound)

	_, err = svc.UpdateBranch(ctx, "missing", settings.BranchInput{Name: "X"})
	require.ErrorIs(t, err, settings.ErrBranchNotFound)
}
