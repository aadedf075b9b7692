package receiving

import (
	"errors"
	"time"
)

// IncomingStatus tracks an expected supplier delivery.
type IncomingStatus string

const (
	IncomingExpected        IncomingStatus = "Expected"
	IncomingReceived        IncomingStatus = "Received"
	IncomingPartiallyBroken IncomingStatus = "Partially Broken"
)

// IncomingItem is one expected line on a supplier delivery.
type IncomingItem struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	ExpectedQty int    `json:"expectedQty"`
	BrokenQty   int    `json:"brokenQty,omitempty"`
}

// IncomingDelivery is a supplier shipment awaiting or past intake.
type IncomingDelivery struct {
	ID         string         `json:"id"`
	Supplier   string         `json:"supplier"`
	Date       time.Time      `json:"date"`
	Status     IncomingStatus `json:"status"`
	Items      []IncomingItem `json:"items"`
	DriverName string         `json:"driverName,omitempty"`
}

// BatchLine is one scanned or manually entered intake line. When IsBox
// is set the received quantity is multiplied by the product's box factor.
type BatchLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
	IsBox     bool   `json:"isBox"`
}

// BatchResult reports the stock effect of one finalized intake batch.
type BatchResult struct {
	Lines      int `json:"lines"`
	UnitsAdded int `json:"unitsAdded"`
}

// ErrEmptyBatch indicates finalizing a batch with no lines; a no-op for callers.
var ErrEmptyBatch = errors.New("receiving: batch is empty")

// ErrIncomingNotFound indicates an unknown incoming delivery id.
var ErrIncomingNotFound = errors.New("receiving: incoming delivery not found")
