package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/shared"
)

// TxRepository exposes the product mutations available inside a store
// transaction.
type TxRepository interface {
	GetProductForUpdate(id string) (Product, error)
	SaveProduct(p Product) error
	CreateProduct(p Product) error
}

// RepositoryPort abstracts product storage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetProduct(ctx context.Context, id string) (Product, error)
	ListProducts(ctx context.Context, location StockLocation) ([]Product, error)
	FindProductByBarcode(ctx context.Context, barcode string, location StockLocation) (Product, error)
	FindProductBySKU(ctx context.Context, sku string, location StockLocation) (Product, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// MirrorPort receives committed ledger effects for an external backend.
// Mirroring never changes core validation behaviour.
type MirrorPort interface {
	ProductUpserted(ctx context.Context, p Product) error
	MovementPosted(ctx context.Context, m Movement) error
}

// Service owns the authoritative stock counts and is the single point
// through which quantity changes are recorded as history.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	mirror MirrorPort
}

// NewService builds Service. audit and mirror may be nil.
func NewService(repo RepositoryPort, auditor AuditPort, mirror MirrorPort) *Service {
	return &Service{repo: repo, audit: auditor, mirror: mirror}
}

// Register catalogues a new product record. A non-zero initial quantity
// produces one Initial history entry.
func (s *Service) Register(ctx context.Context, input RegisterInput) (Product, error) {
	if !input.Location.IsValid() {
		return Product{}, ErrInvalidLocation
	}
	if input.InitialStock < 0 || input.BoxQuantity < 1 {
		return Product{}, ErrInvalidQuantity
	}
	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	product := Product{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		Cost:        input.Cost,
		SKU:         input.SKU,
		Barcode:     input.Barcode,
		BoxQuantity: input.BoxQuantity,
		Location:    input.Location,
		BranchID:    input.BranchID,
	}
	product, err := Apply(product, input.InitialStock, ReasonInitial, actor, "", now)
	if err != nil {
		return Product{}, err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.CreateProduct(product)
	})
	if err != nil {
		return Product{}, err
	}
	if s.audit != nil {
		details := fmt.Sprintf("New product %s catalogued.", product.Name)
		_ = s.audit.Record(ctx, audit.TypeCreate, product.SKU, details, audit.SeveritySuccess)
	}
	s.mirrorProduct(ctx, product, Movement{
		ProductID: product.ID,
		SKU:       product.SKU,
		Delta:     input.InitialStock,
		NewStock:  product.Stock,
		Reason:    ReasonInitial,
		PostedAt:  now,
		ActorID:   actor.ID,
	})
	return product, nil
}

// Adjust sets a product to an absolute quantity, recording the signed
// difference as an Adjustment entry.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (Product, error) {
	if input.TargetStock < 0 {
		return Product{}, ErrInvalidQuantity
	}
	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	var updated Product
	var previous int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(input.ProductID)
		if err != nil {
			return err
		}
		previous = product.Stock
		delta := input.TargetStock - product.Stock
		if delta == 0 {
			updated = product
			return nil
		}
		product, err = Apply(product, delta, ReasonAdjustment, actor, input.Note, now)
		if err != nil {
			return err
		}
		updated = product
		return tx.SaveProduct(product)
	})
	if err != nil {
		return Product{}, err
	}
	if previous != updated.Stock {
		if s.audit != nil {
			details := fmt.Sprintf("Stock adjusted manually for %s: %d -> %d", updated.Name, previous, updated.Stock)
			_ = s.audit.Record(ctx, audit.TypeUpdate, updated.SKU, details, audit.SeverityWarning)
		}
		s.mirrorProduct(ctx, updated, Movement{
			ProductID:   updated.ID,
			SKU:         updated.SKU,
			Delta:       updated.Stock - previous,
			NewStock:    updated.Stock,
			Reason:      ReasonAdjustment,
			ReferenceID: input.Note,
			PostedAt:    now,
			ActorID:     actor.ID,
		})
	}
	return updated, nil
}

// Get returns one product record.
func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// List returns product records, optionally filtered by location.
func (s *Service) List(ctx context.Context, location StockLocation) ([]Product, error) {
	if location != "" && !location.IsValid() {
		return nil, ErrInvalidLocation
	}
	return s.repo.ListProducts(ctx, location)
}

// History returns a product's stock history, newest first.
func (s *Service) History(ctx context.Context, id string) ([]HistoryEntry, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return product.History, nil
}

// LowStock lists products strictly below the threshold.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	products, err := s.repo.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	var low []Product
	for _, p := range products {
		if p.Stock < threshold {
			low = append(low, p)
		}
	}
	return low, nil
}

func (s *Service) mirrorProduct(ctx context.Context, p Product, m Movement) {
	if s.mirror == nil {
		return
	}
	_ = s.mirror.ProductUpserted(ctx, p)
	if m.Delta != 0 {
		_ = s.mirror.MovementPosted(ctx, m)
	}
}
