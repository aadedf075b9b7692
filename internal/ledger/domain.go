package ledger

import (
	"errors"
	"time"
)

// StockLocation is where a product record physically lives.
type StockLocation string

const (
	LocationShop      StockLocation = "Shop"
	LocationWarehouse StockLocation = "Warehouse"
)

// IsValid checks the location against the closed set.
func (l StockLocation) IsValid() bool {
	return l == LocationShop || l == LocationWarehouse
}

// ChangeReason enumerates supported stock movements.
type ChangeReason string

const (
	// ReasonSale represents a point-of-sale depletion.
	ReasonSale ChangeReason = "Sale"
	// ReasonReceipt represents inbound stock from a supplier.
	ReasonReceipt ChangeReason = "Receipt"
	// ReasonAdjustment indicates a manual correction.
	ReasonAdjustment ChangeReason = "Adjustment"
	// ReasonTransfer covers inter-branch custody moves.
	ReasonTransfer ChangeReason = "Transfer"
	// ReasonInitial records the opening quantity at registration.
	ReasonInitial ChangeReason = "Initial"
)

// HistoryCap bounds the retained history per product, newest first.
const HistoryCap = 100

// HistoryEntry is an immutable record of one stock change.
type HistoryEntry struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	ChangeAmount int          `json:"changeAmount"`
	NewStock     int          `json:"newStock"`
	Reason       ChangeReason `json:"reason"`
	ReferenceID  string       `json:"referenceId,omitempty"`
	UserID       string       `json:"userId"`
	UserName     string       `json:"userName"`
}

// Product is a stock-keeping unit at a specific location. The same
// article stocked at Shop and Warehouse is two distinct records sharing
// name, SKU and barcode.
type Product struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Category    string         `json:"category"`
	Price       float64        `json:"price"`
	Cost        float64        `json:"cost"`
	Stock       int            `json:"stock"`
	SKU         string         `json:"sku"`
	Barcode     string         `json:"barcode"`
	BoxQuantity int            `json:"boxQuantity"`
	Location    StockLocation  `json:"location"`
	BranchID    string         `json:"branchId,omitempty"`
	Revision    int64          `json:"revision"`
	History     []HistoryEntry `json:"history"`
}

// Movement summarises a posted stock change for downstream mirrors.
type Movement struct {
	ProductID   string
	SKU         string
	Delta       int
	NewStock    int
	Reason      ChangeReason
	ReferenceID string
	PostedAt    time.Time
	ActorID     string
}

// RegisterInput describes a new product record.
type RegisterInput struct {
	Name         string        `json:"name" validate:"required"`
	Category     string        `json:"category" validate:"required"`
	Price        float64       `json:"price" validate:"gte=0"`
	Cost         float64       `json:"cost" validate:"gte=0"`
	InitialStock int           `json:"initialStock" validate:"gte=0"`
	SKU          string        `json:"sku" validate:"required"`
	Barcode      string        `json:"barcode"`
	BoxQuantity  int           `json:"boxQuantity" validate:"gte=1"`
	Location     StockLocation `json:"location" validate:"required"`
	BranchID     string        `json:"branchId"`
}

// AdjustInput sets a product to an absolute target quantity.
type AdjustInput struct {
	ProductID   string `json:"productId" validate:"required"`
	TargetStock int    `json:"targetStock" validate:"gte=0"`
	Note        string `json:"note"`
}

// ErrInsufficientStock triggered when a movement would result in negative stock.
var ErrInsufficientStock = errors.New("ledger: insufficient stock")

// ErrProductNotFound indicates an unknown product id, SKU or barcode.
var ErrProductNotFound = errors.New("ledger: product not found")

// ErrInvalidQuantity indicates an invalid quantity or box factor.
var ErrInvalidQuantity = errors.New("ledger: invalid quantity")

// ErrInvalidLocation indicates a location outside the closed set.
var ErrInvalidLocation = errors.New("ledger: invalid stock location")
