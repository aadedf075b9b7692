package accounting

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/settings"
)

type mockRepo struct {
	sales      []pos.Sale
	expenses   map[string]Expense
	config     settings.SystemConfig
	salesCalls int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		expenses: map[string]Expense{},
		config: settings.SystemConfig{
			StoreName: "Test Store", Currency: "USD",
			LowStockThreshold: 10, TaxRate: 15, PaymentMethods: []string{"Cash"},
		},
	}
}

func (m *mockRepo) ListSales(ctx context.Context) ([]pos.Sale, error) {
	m.salesCalls++
	return m.sales, nil
}

func (m *mockRepo) ListExpenses(ctx context.Context) ([]Expense, error) {
	out := make([]Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		out = append(out, e)
	}
	return out, nil
}

func (m *mockRepo) GetExpense(ctx context.Context, id string) (Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return Expense{}, ErrExpenseNotFound
	}
	return e, nil
}

func (m *mockRepo) SaveExpense(ctx context.Context, expense Expense) error {
	m.expenses[expense.ID] = expense
	return nil
}

func (m *mockRepo) DeleteExpense(ctx context.Context, id string) error {
	if _, ok := m.expenses[id]; !ok {
		return ErrExpenseNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *mockRepo) SystemConfig(ctx context.Context) (settings.SystemConfig, error) {
	return m.config, nil
}

func newTestService(t *testing.T, repo RepositoryPort) (*Service, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	svc := NewService(repo, cache, nil)
	return svc, func() {
		_ = client.Close()
		mr.Close()
	}
}

func saleOn(day time.Time, items []pos.SaleItem, subtotal, tax float64) pos.Sale {
	return pos.Sale{
		ID: "S-" + day.Format("20060102150405"), Date: day, Items: items,
		Subtotal: subtotal, Tax: tax, Total: subtotal + tax,
	}
}

func TestSummaryComputesProfit(t *testing.T) {
	repo := newMockRepo()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	repo.sales = []pos.Sale{
		saleOn(day, []pos.SaleItem{{ProductID: "p-1", Name: "Hammer", Quantity: 3, Price: 20, Cost: 11}}, 60, 9),
		saleOn(day.Add(time.Hour), []pos.SaleItem{{ProductID: "p-2", Name: "Drill", Quantity: 1, Price: 100, Cost: 60}}, 100, 15),
	}
	repo.expenses["e-1"] = Expense{ID: "e-1", Amount: 25, Category: ExpenseFuel}

	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 160, summary.Revenue, 1e-9)
	require.InDelta(t, 24, summary.TaxCollected, 1e-9)
	require.InDelta(t, 93, summary.CostOfGoods, 1e-9)
	require.InDelta(t, 25, summary.Expenses, 1e-9)
	require.InDelta(t, 42, summary.NetProfit, 1e-9)
	require.Equal(t, "USD", summary.Currency)
	require.NotEmpty(t, summary.FormattedRevenue)
	require.NotEmpty(t, summary.FormattedNet)
}

func TestDailySalesGroupsByDay(t *testing.T) {
	repo := newMockRepo()
	day1 := time.Date(2026, 8, 19, 9, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	repo.sales = []pos.Sale{
		saleOn(day1, nil, 50, 7.5),
		saleOn(day1.Add(2*time.Hour), nil, 30, 4.5),
		saleOn(day2, nil, 100, 15),
	}

	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	days, err := svc.DailySales(context.Background())
	require.NoError(t, err)
	require.Len(t, days, 2)
	require.Equal(t, "2026-08-20", days[0].Day)
	require.Equal(t, 1, days[0].Transactions)
	require.Equal(t, "2026-08-19", days[1].Day)
	require.Equal(t, 2, days[1].Transactions)
	require.InDelta(t, 92, days[1].Revenue, 1e-9)
	require.InDelta(t, 12, days[1].Tax, 1e-9)
}

func TestTopProductsRanksByUnits(t *testing.T) {
	repo := newMockRepo()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	repo.sales = []pos.Sale{
		saleOn(day, []pos.SaleItem{
			{ProductID: "p-1", Name: "Hammer", Quantity: 3, Price: 20},
			{ProductID: "p-2", Name: "Drill", Quantity: 1, Price: 100},
		}, 160, 24),
		saleOn(day.Add(time.Hour), []pos.SaleItem{
			{ProductID: "p-1", Name: "Hammer", Quantity: 2, Price: 20},
		}, 40, 6),
	}

	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ranked, err := svc.TopProducts(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	require.Equal(t, "Hammer", ranked[0].Name)
	require.Equal(t, 5, ranked[0].UnitsSold)
	require.InDelta(t, 100, ranked[0].Revenue, 1e-9)

	top1, err := svc.TopProducts(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
}

func TestReportsAreCached(t *testing.T) {
	repo := newMockRepo()
	day := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	repo.sales = []pos.Sale{saleOn(day, nil, 50, 7.5)}

	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	_, err := svc.DailySales(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.salesCalls)

	// Second read is served from Redis.
	_, err = svc.DailySales(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, repo.salesCalls)
}

func TestCacheFallsThroughWithoutRedis(t *testing.T) {
	repo := newMockRepo()
	repo.sales = []pos.Sale{saleOn(time.Now().UTC(), nil, 50, 7.5)}
	svc := NewService(repo, nil, nil)

	ctx := context.Background()
	_, err := svc.DailySales(ctx)
	require.NoError(t, err)
	_, err = svc.DailySales(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, repo.salesCalls)
}

func TestExpenseLifecycle(t *testing.T) {
	repo := newMockRepo()
	svc, cleanup := newTestService(t, repo)
	defer cleanup()

	ctx := context.Background()
	expense, err := svc.BookExpense(ctx, ExpenseInput{Description: "Diesel", Amount: 40, Category: ExpenseFuel})
	require.NoError(t, err)
	require.NotEmpty(t, expense.ID)

	_, err = svc.BookExpense(ctx, ExpenseInput{Description: "Bad", Amount: 1, Category: "Bribes"})
	require.ErrorIs(t, err, ErrInvalidCategory)

	listed, err := svc.Expenses(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.RemoveExpense(ctx, expense.ID))
	require.ErrorIs(t, svc.RemoveExpense(ctx, expense.ID), ErrExpenseNotFound)
}
