package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
)

// TxRepository exposes the mutations available inside a transfer
// transaction.
type TxRepository interface {
	GetProductForUpdate(id string) (ledger.Product, error)
	FindProductBySKUForUpdate(sku string, location ledger.StockLocation, branchID string) (ledger.Product, error)
	SaveProduct(p ledger.Product) error
	CreateProduct(p ledger.Product) error
	GetDelivery(id string) (Delivery, error)
	SaveDelivery(d Delivery) error
}

// RepositoryPort abstracts delivery storage.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListDeliveries(ctx context.Context, deliveryType DeliveryType) ([]Delivery, error)
	GetDelivery(ctx context.Context, id string) (Delivery, error)
	GetSale(ctx context.Context, id string) (pos.Sale, error)
	GetBranch(ctx context.Context, id string) (settings.Branch, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// MirrorPort receives committed transfer effects for an external backend.
type MirrorPort interface {
	ProductUpserted(ctx context.Context, p ledger.Product) error
	MovementPosted(ctx context.Context, m ledger.Movement) error
}

// Service records inter-branch transfers and customer deliveries.
// Creating a transfer takes custody: source stock is decremented
// immediately; marking the manifest Delivered applies the matching
// increment at the destination record.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	mirror MirrorPort
}

// NewService builds Service. audit and mirror may be nil.
func NewService(repo RepositoryPort, auditor AuditPort, mirror MirrorPort) *Service {
	return &Service{repo: repo, audit: auditor, mirror: mirror}
}

// CreateTransfer validates requested quantities against live warehouse
// stock, decrements the source records and drafts a Pending manifest,
// all in one transaction.
func (s *Service) CreateTransfer(ctx context.Context, input CreateTransferInput) (Delivery, error) {
	if len(input.Lines) == 0 {
		return Delivery{}, ledger.ErrInvalidQuantity
	}
	branch, err := s.repo.GetBranch(ctx, input.DestinationBranchID)
	if err != nil {
		return Delivery{}, err
	}
	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	delivery := Delivery{
		ID:          fmt.Sprintf("TRF-%d", now.UnixNano()),
		Type:        TypeTransfer,
		Origin:      string(ledger.LocationWarehouse),
		Destination: branch.ID,
		Status:      StatusPending,
		DriverID:    input.DriverID,
		Timeline:    []TimelineEntry{{Status: "Transfer Authorized", Time: now}},
	}

	var movements []ledger.Movement
	var touched []ledger.Product
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		movements = movements[:0]
		touched = touched[:0]
		delivery.Items = delivery.Items[:0]
		for _, line := range input.Lines {
			if line.Quantity <= 0 {
				return ledger.ErrInvalidQuantity
			}
			product, err := tx.GetProductForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product.Location != ledger.LocationWarehouse {
				return fmt.Errorf("%w: %s is not warehouse stock", ledger.ErrInvalidLocation, product.Name)
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s", ledger.ErrInsufficientStock, product.Name)
			}
			product, err = ledger.Apply(product, -line.Quantity, ledger.ReasonTransfer, actor, delivery.ID, now)
			if err != nil {
				return err
			}
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			delivery.Items = append(delivery.Items, pos.SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Cost:      product.Cost,
			})
			touched = append(touched, product)
			movements = append(movements, ledger.Movement{
				ProductID:   product.ID,
				SKU:         product.SKU,
				Delta:       -line.Quantity,
				NewStock:    product.Stock,
				Reason:      ledger.ReasonTransfer,
				ReferenceID: delivery.ID,
				PostedAt:    now,
				ActorID:     actor.ID,
			})
		}
		return tx.SaveDelivery(delivery)
	})
	if err != nil {
		return Delivery{}, err
	}

	if s.audit != nil {
		details := fmt.Sprintf("Stock transfer initiated to %s.", branch.Name)
		_ = s.audit.Record(ctx, audit.TypeTransfer, delivery.ID, details, audit.SeverityInfo)
	}
	s.mirrorAll(ctx, touched, movements)
	return delivery, nil
}

// CreateCustomerDelivery drafts a customer delivery manifest for a
// committed sale. Stock already left the shelf at checkout, so this has
// no ledger effect.
func (s *Service) CreateCustomerDelivery(ctx context.Context, input CreateCustomerInput) (Delivery, error) {
	sale, err := s.repo.GetSale(ctx, input.SaleID)
	if err != nil {
		return Delivery{}, err
	}
	now := time.Now().UTC()
	delivery := Delivery{
		ID:          fmt.Sprintf("DLV-%d", now.UnixNano()),
		SaleID:      sale.ID,
		Type:        TypeCustomer,
		Origin:      string(ledger.LocationShop),
		Destination: input.Destination,
		Items:       sale.Items,
		Status:      StatusPending,
		DriverID:    input.DriverID,
		Timeline:    []TimelineEntry{{Status: "Dispatch Scheduled", Time: now}},
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SaveDelivery(delivery)
	})
	if err != nil {
		return Delivery{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeCreate, delivery.ID, fmt.Sprintf("Customer delivery scheduled for sale %s.", sale.ID), audit.SeverityInfo)
	}
	return delivery, nil
}

// AdvanceStatus moves a delivery one step along its lifecycle. Marking
// a transfer Delivered increments the destination counterpart records.
func (s *Service) AdvanceStatus(ctx context.Context, id string, target Status, note string) (Delivery, error) {
	if !target.IsValid() {
		return Delivery{}, ErrInvalidTransition
	}
	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var updated Delivery
	var movements []ledger.Movement
	var touched []ledger.Product
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		movements = movements[:0]
		touched = touched[:0]
		delivery, err := tx.GetDelivery(id)
		if err != nil {
			return err
		}
		if !delivery.Status.CanAdvanceTo(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, delivery.Status, target)
		}
		delivery.Status = target
		delivery.Timeline = append(delivery.Timeline, TimelineEntry{Status: string(target), Time: now, Note: note})
		if target == StatusDelivered && delivery.Type == TypeTransfer {
			for _, item := range delivery.Items {
				product, err := s.receiveAtDestination(tx, delivery, item, actor, now)
				if err != nil {
					return err
				}
				touched = append(touched, product)
				movements = append(movements, ledger.Movement{
					ProductID:   product.ID,
					SKU:         product.SKU,
					Delta:       item.Quantity,
					NewStock:    product.Stock,
					Reason:      ledger.ReasonTransfer,
					ReferenceID: delivery.ID,
					PostedAt:    now,
					ActorID:     actor.ID,
				})
			}
		}
		updated = delivery
		return tx.SaveDelivery(delivery)
	})
	if err != nil {
		return Delivery{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeUpdate, updated.ID, fmt.Sprintf("Delivery status advanced to %s.", target), audit.SeverityInfo)
	}
	s.mirrorAll(ctx, touched, movements)
	return updated, nil
}

// Deliveries lists manifests, optionally filtered by type.
func (s *Service) Deliveries(ctx context.Context, deliveryType DeliveryType) ([]Delivery, error) {
	return s.repo.ListDeliveries(ctx, deliveryType)
}

// receiveAtDestination increments the counterpart record for one
// transferred line, creating an empty record first when the destination
// branch has never stocked the article.
func (s *Service) receiveAtDestination(tx TxRepository, delivery Delivery, item pos.SaleItem, actor shared.Actor, now time.Time) (ledger.Product, error) {
	source, err := tx.GetProductForUpdate(item.ProductID)
	if err != nil {
		return ledger.Product{}, err
	}
	dest, err := tx.FindProductBySKUForUpdate(source.SKU, ledger.LocationShop, delivery.Destination)
	if errors.Is(err, ledger.ErrProductNotFound) {
		dest = ledger.Product{
			ID:          uuid.NewString(),
			Name:        source.Name,
			Category:    source.Category,
			Price:       source.Price,
			Cost:        source.Cost,
			SKU:         source.SKU,
			Barcode:     source.Barcode,
			BoxQuantity: source.BoxQuantity,
			Location:    ledger.LocationShop,
			BranchID:    delivery.Destination,
		}
		if err := tx.CreateProduct(dest); err != nil {
			return ledger.Product{}, err
		}
	} else if err != nil {
		return ledger.Product{}, err
	}
	dest, err = ledger.Apply(dest, item.Quantity, ledger.ReasonTransfer, actor, delivery.ID, now)
	if err != nil {
		return ledger.Product{}, err
	}
	if err := tx.SaveProduct(dest); err != nil {
		return ledger.Product{}, err
	}
	return dest, nil
}

func (s *Service) mirrorAll(ctx context.Context, products []ledger.Product, movements []ledger.Movement) {
	if s.mirror == nil {
		return
	}
	for i, p := range products {
		_ = s.mirror.ProductUpserted(ctx, p)
		_ = s.mirror.MovementPosted(ctx, movements[i])
	}
}
