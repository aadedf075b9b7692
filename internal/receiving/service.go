package receiving

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/shared"
)

// TxRepository exposes the mutations available inside an intake
// transaction.
type TxRepository interface {
	GetProductForUpdate(id string) (ledger.Product, error)
	SaveProduct(p ledger.Product) error
	GetIncoming(id string) (IncomingDelivery, error)
	SaveIncoming(delivery IncomingDelivery) error
}

// RepositoryPort abstracts intake storage.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListIncoming(ctx context.Context) ([]IncomingDelivery, error)
	GetIncoming(ctx context.Context, id string) (IncomingDelivery, error)
	FindProductByBarcode(ctx context.Context, barcode string, location ledger.StockLocation) (ledger.Product, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// MirrorPort receives committed intake effects for an external backend.
type MirrorPort interface {
	ProductUpserted(ctx context.Context, p ledger.Product) error
	MovementPosted(ctx context.Context, m ledger.Movement) error
}

// Service applies batches of incoming stock to matching products.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	mirror MirrorPort
}

// NewService builds Service. audit and mirror may be nil.
func NewService(repo RepositoryPort, auditor AuditPort, mirror MirrorPort) *Service {
	return &Service{repo: repo, audit: auditor, mirror: mirror}
}

// ResolveBarcode finds the product a scanned code belongs to, so an
// unresolved code can be reported before the line joins the batch.
func (s *Service) ResolveBarcode(ctx context.Context, barcode string, location ledger.StockLocation) (ledger.Product, error) {
	return s.repo.FindProductByBarcode(ctx, barcode, location)
}

// ReceiveBatch increments stock for every line in one transaction. Box
// lines add quantity multiplied by the product's box factor. One
// INVENTORY_ADJ audit entry summarises the whole batch.
func (s *Service) ReceiveBatch(ctx context.Context, lines []BatchLine) (BatchResult, error) {
	if len(lines) == 0 {
		return BatchResult{}, ErrEmptyBatch
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return BatchResult{}, ledger.ErrInvalidQuantity
		}
	}
	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()

	var movements []ledger.Movement
	var touched []ledger.Product
	result := BatchResult{}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		movements = movements[:0]
		touched = touched[:0]
		result = BatchResult{}
		for _, line := range lines {
			product, err := tx.GetProductForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			added := line.Quantity
			if line.IsBox {
				added = line.Quantity * product.BoxQuantity
			}
			product, err = ledger.Apply(product, added, ledger.ReasonReceipt, actor, "", now)
			if err != nil {
				return err
			}
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			result.Lines++
			result.UnitsAdded += added
			touched = append(touched, product)
			movements = append(movements, ledger.Movement{
				ProductID: product.ID,
				SKU:       product.SKU,
				Delta:     added,
				NewStock:  product.Stock,
				Reason:    ledger.ReasonReceipt,
				PostedAt:  now,
				ActorID:   actor.ID,
			})
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}

	if s.audit != nil {
		details := fmt.Sprintf("Received %d product lines via barcode scan.", result.Lines)
		_ = s.audit.Record(ctx, audit.TypeInventoryAdj, "BULK_RECEIVE", details, audit.SeveritySuccess)
	}
	if s.mirror != nil {
		for i, p := range touched {
			_ = s.mirror.ProductUpserted(ctx, p)
			_ = s.mirror.MovementPosted(ctx, movements[i])
		}
	}
	return result, nil
}

// RegisterIncoming records an expected supplier delivery.
func (s *Service) RegisterIncoming(ctx context.Context, supplier, driverName string, items []IncomingItem) (IncomingDelivery, error) {
	delivery := IncomingDelivery{
		ID:         uuid.NewString(),
		Supplier:   supplier,
		Date:       time.Now().UTC(),
		Status:     IncomingExpected,
		Items:      items,
		DriverName: driverName,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.SaveIncoming(delivery)
	})
	if err != nil {
		return IncomingDelivery{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeCreate, delivery.ID, fmt.Sprintf("Incoming delivery from %s registered.", supplier), audit.SeverityInfo)
	}
	return delivery, nil
}

// MarkIncoming updates the status of an expected delivery, recording
// broken quantities when intake found damage.
func (s *Service) MarkIncoming(ctx context.Context, id string, status IncomingStatus, broken map[string]int) (IncomingDelivery, error) {
	var updated IncomingDelivery
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		delivery, err := tx.GetIncoming(id)
		if err != nil {
			return err
		}
		delivery.Status = status
		for i, item := range delivery.Items {
			if qty, ok := broken[item.ProductID]; ok {
				delivery.Items[i].BrokenQty = qty
			}
		}
		updated = delivery
		return tx.SaveIncoming(delivery)
	})
	if err != nil {
		return IncomingDelivery{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, audit.TypeUpdate, updated.ID, fmt.Sprintf("Incoming delivery marked %s.", status), audit.SeverityInfo)
	}
	return updated, nil
}

// Incoming lists registered supplier deliveries.
func (s *Service) Incoming(ctx context.Context) ([]IncomingDelivery, error) {
	return s.repo.ListIncoming(ctx)
}
