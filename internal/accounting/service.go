package accounting

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/settings"
)

const (
	cacheKeyDailySales  = "reports:daily_sales"
	cacheKeyTopProducts = "reports:top_products"
	cacheKeySummary     = "reports:summary"
)

// RepositoryPort abstracts the collections the accounting views read.
type RepositoryPort interface {
	ListSales(ctx context.Context) ([]pos.Sale, error)
	ListExpenses(ctx context.Context) ([]Expense, error)
	GetExpense(ctx context.Context, id string) (Expense, error)
	SaveExpense(ctx context.Context, expense Expense) error
	DeleteExpense(ctx context.Context, id string) error
	SystemConfig(ctx context.Context) (settings.SystemConfig, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// Service computes accounting views over sales and expenses.
type Service struct {
	repo  RepositoryPort
	cache *Cache
	audit AuditPort
}

// NewService builds Service. cache and audit may be nil.
func NewService(repo RepositoryPort, cache *Cache, auditor AuditPort) *Service {
	return &Service{repo: repo, cache: cache, audit: auditor}
}

// BookExpense records an outgoing amount.
func (s *Service) BookExpense(ctx context.Context, input ExpenseInput) (Expense, error) {
	if !input.Category.IsValid() {
		return Expense{}, ErrInvalidCategory
	}
	expense := Expense{
		ID:          uuid.NewString(),
		Date:        time.Now().UTC(),
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
	}
	if err := s.repo.SaveExpense(ctx, expense); err != nil {
		return Expense{}, err
	}
	if s.audit != nil {
		details := fmt.Sprintf("Expense booked: %s (%.2f)", expense.Description, expense.Amount)
		_ = s.audit.Record(ctx, audit.TypeCreate, string(expense.Category), details, audit.SeverityInfo)
	}
	_ = s.cache.Invalidate(ctx, cacheKeySummary)
	return expense, nil
}

// RemoveExpense deletes a booked expense.
func (s *Service) RemoveExpense(ctx context.Context, id string) error {
	expense, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeDelete, string(expense.Category), fmt.Sprintf("Expense removed: %s", expense.Description), audit.SeverityWarning)
	}
	_ = s.cache.Invalidate(ctx, cacheKeySummary)
	return nil
}

// Expenses lists booked expenses.
func (s *Service) Expenses(ctx context.Context) ([]Expense, error) {
	return s.repo.ListExpenses(ctx)
}

// DailySales aggregates committed sales per calendar day, newest day first.
func (s *Service) DailySales(ctx context.Context) ([]DailySales, error) {
	var result []DailySales
	err := s.cache.FetchJSON(ctx, cacheKeyDailySales, &result, func(ctx context.Context) (interface{}, error) {
		sales, err := s.repo.ListSales(ctx)
		if err != nil {
			return nil, err
		}
		byDay := make(map[string]*DailySales)
		for _, sale := range sales {
			day := sale.Date.UTC().Format("2006-01-02")
			bucket, ok := byDay[day]
			if !ok {
				bucket = &DailySales{Day: day}
				byDay[day] = bucket
			}
			bucket.Transactions++
			bucket.Revenue = round2(bucket.Revenue + sale.Total)
			bucket.Tax = round2(bucket.Tax + sale.Tax)
		}
		days := make([]DailySales, 0, len(byDay))
		for _, bucket := range byDay {
			days = append(days, *bucket)
		}
		sort.Slice(days, func(i, j int) bool { return days[i].Day > days[j].Day })
		return days, nil
	})
	return result, err
}

// TopProducts ranks articles by units sold, descending.
func (s *Service) TopProducts(ctx context.Context, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	var result []TopProduct
	err := s.cache.FetchJSON(ctx, fmt.Sprintf("%s:%d", cacheKeyTopProducts, limit), &result, func(ctx context.Context) (interface{}, error) {
		sales, err := s.repo.ListSales(ctx)
		if err != nil {
			return nil, err
		}
		byProduct := make(map[string]*TopProduct)
		for _, sale := range sales {
			for _, item := range sale.Items {
				entry, ok := byProduct[item.ProductID]
				if !ok {
					entry = &TopProduct{ProductID: item.ProductID, Name: item.Name}
					byProduct[item.ProductID] = entry
				}
				entry.UnitsSold += item.Quantity
				entry.Revenue = round2(entry.Revenue + item.Price*float64(item.Quantity))
			}
		}
		ranked := make([]TopProduct, 0, len(byProduct))
		for _, entry := range byProduct {
			ranked = append(ranked, *entry)
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].UnitsSold != ranked[j].UnitsSold {
				return ranked[i].UnitsSold > ranked[j].UnitsSold
			}
			return ranked[i].Name < ranked[j].Name
		})
		if len(ranked) > limit {
			ranked = ranked[:limit]
		}
		return ranked, nil
	})
	return result, err
}

// Summary computes the headline profit view in the configured currency.
func (s *Service) Summary(ctx context.Context) (ProfitSummary, error) {
	var result ProfitSummary
	err := s.cache.FetchJSON(ctx, cacheKeySummary, &result, func(ctx context.Context) (interface{}, error) {
		sales, err := s.repo.ListSales(ctx)
		if err != nil {
			return nil, err
		}
		expenses, err := s.repo.ListExpenses(ctx)
		if err != nil {
			return nil, err
		}
		cfg, err := s.repo.SystemConfig(ctx)
		if err != nil {
			return nil, err
		}
		summary := ProfitSummary{Currency: cfg.Currency}
		for _, sale := range sales {
			summary.Revenue = round2(summary.Revenue + sale.Subtotal)
			summary.TaxCollected = round2(summary.TaxCollected + sale.Tax)
			for _, item := range sale.Items {
				summary.CostOfGoods = round2(summary.CostOfGoods + item.Cost*float64(item.Quantity))
			}
		}
		for _, expense := range expenses {
			summary.Expenses = round2(summary.Expenses + expense.Amount)
		}
		summary.NetProfit = round2(summary.Revenue - summary.CostOfGoods - summary.Expenses)
		summary.FormattedRevenue = formatAmount(cfg.Currency, summary.Revenue)
		summary.FormattedNet = formatAmount(cfg.Currency, summary.NetProfit)
		return summary, nil
	})
	return result, err
}

// formatAmount renders an amount with the narrow symbol of the
// configured ISO currency, falling back to USD for unknown codes.
func formatAmount(code string, v float64) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		unit = currency.USD
	}
	printer := message.NewPrinter(language.English)
	return printer.Sprintf("%v", currency.NarrowSymbol(unit.Amount(v)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
