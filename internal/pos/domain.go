package pos

import (
	"errors"
	"time"
)

// SaleItem is one committed line with price and cost snapshots.
type SaleItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
}

// Sale is a completed point-of-sale transaction. Immutable once committed.
type Sale struct {
	ID            string     `json:"id"`
	Date          time.Time  `json:"date"`
	Items         []SaleItem `json:"items"`
	Subtotal      float64    `json:"subtotal"`
	Tax           float64    `json:"tax"`
	Total         float64    `json:"total"`
	CashierID     string     `json:"cashierId"`
	PaymentMethod string     `json:"paymentMethod"`
}

// CartLine is one requested line before commit.
type CartLine struct {
	ProductID string  `json:"productId" validate:"required"`
	Quantity  int     `json:"quantity" validate:"gt=0"`
	Price     float64 `json:"price" validate:"gte=0"`
	Cost      float64 `json:"cost" validate:"gte=0"`
}

// CheckoutInput is a cart plus the selected payment method.
type CheckoutInput struct {
	Lines         []CartLine `json:"lines" validate:"required,dive"`
	PaymentMethod string     `json:"paymentMethod"`
}

// ErrEmptyCart indicates a checkout with no lines; callers treat it as a no-op.
var ErrEmptyCart = errors.New("pos: cart is empty")

// ErrSaleNotFound indicates an unknown sale id.
var ErrSaleNotFound = errors.New("pos: sale not found")

// ErrNoPaymentMethods indicates no configured payment methods to fall back to.
var ErrNoPaymentMethods = errors.New("pos: no payment methods configured")
