package transfer

import (
	"errors"
	"time"

	"github.com/ironmart/ironmart/internal/pos"
)

// DeliveryType distinguishes customer drops from inter-branch transfers.
type DeliveryType string

const (
	TypeCustomer DeliveryType = "Customer"
	TypeTransfer DeliveryType = "Transfer"
)

// Status is the lifecycle of a delivery manifest.
type Status string

const (
	StatusPending        Status = "Pending"
	StatusPickedUp       Status = "Picked Up"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
)

// IsValid checks the status against the closed set.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPickedUp, StatusOutForDelivery, StatusDelivered:
		return true
	default:
		return false
	}
}

// Next returns the only status this one may advance to, or "" when terminal.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusPickedUp
	case StatusPickedUp:
		return StatusOutForDelivery
	case StatusOutForDelivery:
		return StatusDelivered
	default:
		return ""
	}
}

// CanAdvanceTo reports whether the transition is allowed.
func (s Status) CanAdvanceTo(target Status) bool {
	return target != "" && s.Next() == target
}

// TimelineEntry is one free-text note on a delivery's progress.
type TimelineEntry struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
	Note   string    `json:"note,omitempty"`
}

// Delivery is a manifest of sale-item-shaped lines moving from an
// origin to a destination.
type Delivery struct {
	ID          string          `json:"id"`
	SaleID      string          `json:"saleId,omitempty"`
	Type        DeliveryType    `json:"type"`
	Origin      string          `json:"origin"`
	Destination string          `json:"destination"`
	Items       []pos.SaleItem  `json:"items"`
	Status      Status          `json:"status"`
	DriverID    string          `json:"driverId,omitempty"`
	Timeline    []TimelineEntry `json:"timeline"`
}

// TransferLine requests a quantity of a warehouse product.
type TransferLine struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gt=0"`
}

// CreateTransferInput drafts an inter-branch transfer manifest.
type CreateTransferInput struct {
	DestinationBranchID string         `json:"destinationBranchId" validate:"required"`
	Lines               []TransferLine `json:"lines" validate:"required,min=1,dive"`
	DriverID            string         `json:"driverId"`
}

// CreateCustomerInput drafts a customer delivery for a committed sale.
type CreateCustomerInput struct {
	SaleID      string `json:"saleId" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	DriverID    string `json:"driverId"`
}

// ErrDeliveryNotFound indicates an unknown delivery id.
var ErrDeliveryNotFound = errors.New("transfer: delivery not found")

// ErrInvalidTransition indicates a status change outside the defined order.
var ErrInvalidTransition = errors.New("transfer: invalid status transition")
