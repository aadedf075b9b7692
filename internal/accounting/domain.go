package accounting

import (
	"errors"
	"time"
)

// ExpenseCategory enumerates bookable expense kinds.
type ExpenseCategory string

const (
	ExpenseUtility       ExpenseCategory = "Utility"
	ExpenseSalary        ExpenseCategory = "Salary"
	ExpenseMaintenance   ExpenseCategory = "Maintenance"
	ExpenseRent          ExpenseCategory = "Rent"
	ExpenseFuel          ExpenseCategory = "Fuel"
	ExpenseTelephone     ExpenseCategory = "Telephone"
	ExpenseMeals         ExpenseCategory = "Meals"
	ExpenseStockPurchase ExpenseCategory = "Stock Purchase"
	ExpenseOther         ExpenseCategory = "Other"
)

// IsValid checks the category against the closed set.
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseUtility, ExpenseSalary, ExpenseMaintenance, ExpenseRent,
		ExpenseFuel, ExpenseTelephone, ExpenseMeals, ExpenseStockPurchase, ExpenseOther:
		return true
	default:
		return false
	}
}

// Expense is one booked outgoing amount.
type Expense struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Category    ExpenseCategory `json:"category"`
}

// ExpenseInput books a new expense.
type ExpenseInput struct {
	Description string          `json:"description" validate:"required"`
	Amount      float64         `json:"amount" validate:"gt=0"`
	Category    ExpenseCategory `json:"category" validate:"required"`
}

// DailySales aggregates committed sales for one calendar day.
type DailySales struct {
	Day          string  `json:"day"`
	Transactions int     `json:"transactions"`
	Revenue      float64 `json:"revenue"`
	Tax          float64 `json:"tax"`
}

// TopProduct ranks an article by units sold.
type TopProduct struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitsSold int     `json:"unitsSold"`
	Revenue   float64 `json:"revenue"`
}

// ProfitSummary is the headline accounting view.
type ProfitSummary struct {
	Revenue          float64 `json:"revenue"`
	TaxCollected     float64 `json:"taxCollected"`
	CostOfGoods      float64 `json:"costOfGoods"`
	Expenses         float64 `json:"expenses"`
	NetProfit        float64 `json:"netProfit"`
	Currency         string  `json:"currency"`
	FormattedRevenue string  `json:"formattedRevenue"`
	FormattedNet     string  `json:"formattedNet"`
}

// ErrExpenseNotFound indicates an unknown expense id.
var ErrExpenseNotFound = errors.New("accounting: expense not found")

// ErrInvalidCategory indicates a category outside the closed set.
var ErrInvalidCategory = errors.New("accounting: invalid expense category")
