package pos

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/shared"
)

// TxRepository exposes the mutations available inside a checkout
// transaction.
type TxRepository interface {
	GetProductForUpdate(id string) (ledger.Product, error)
	SaveProduct(p ledger.Product) error
	AppendSale(sale Sale) error
}

// RepositoryPort abstracts sale and product storage.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListSales(ctx context.Context) ([]Sale, error)
	GetSale(ctx context.Context, id string) (Sale, error)
}

// ConfigPort supplies the externally managed system configuration.
type ConfigPort interface {
	SystemConfig(ctx context.Context) (settings.SystemConfig, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, logType audit.LogType, target, details string, severity audit.Severity) error
}

// MirrorPort receives committed sales for an external backend.
type MirrorPort interface {
	SaleCommitted(ctx context.Context, sale Sale) error
	ProductUpserted(ctx context.Context, p ledger.Product) error
	MovementPosted(ctx context.Context, m ledger.Movement) error
}

// Service commits carts into sales and applies the per-line stock
// decrements all-or-nothing.
type Service struct {
	repo   RepositoryPort
	config ConfigPort
	audit  AuditPort
	mirror MirrorPort
}

// NewService builds Service. audit and mirror may be nil.
func NewService(repo RepositoryPort, config ConfigPort, auditor AuditPort, mirror MirrorPort) *Service {
	return &Service{repo: repo, config: config, audit: auditor, mirror: mirror}
}

// Checkout validates every line against live stock and commits the sale
// plus one Sale history entry per line in a single transaction. Any
// shortfall aborts the whole checkout with no partial application.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (Sale, error) {
	if len(input.Lines) == 0 {
		return Sale{}, ErrEmptyCart
	}
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return Sale{}, ledger.ErrInvalidQuantity
		}
	}
	cfg, err := s.config.SystemConfig(ctx)
	if err != nil {
		return Sale{}, err
	}
	method, err := resolvePaymentMethod(input.PaymentMethod, cfg.PaymentMethods)
	if err != nil {
		return Sale{}, err
	}

	actor := shared.ActorFromContext(ctx)
	now := time.Now().UTC()
	subtotal := 0.0
	for _, line := range input.Lines {
		subtotal += line.Price * float64(line.Quantity)
	}
	subtotal = round2(subtotal)
	tax := round2(subtotal * cfg.TaxRate / 100)
	sale := Sale{
		ID:            fmt.Sprintf("S-%d", now.UnixNano()),
		Date:          now,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         round2(subtotal + tax),
		CashierID:     actor.ID,
		PaymentMethod: method,
	}

	var movements []ledger.Movement
	var touched []ledger.Product
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		movements = movements[:0]
		touched = touched[:0]
		sale.Items = sale.Items[:0]
		for _, line := range input.Lines {
			product, err := tx.GetProductForUpdate(line.ProductID)
			if err != nil {
				return err
			}
			if product.Stock < line.Quantity {
				return fmt.Errorf("%w: %s", ledger.ErrInsufficientStock, product.Name)
			}
			product, err = ledger.Apply(product, -line.Quantity, ledger.ReasonSale, actor, sale.ID, now)
			if err != nil {
				return err
			}
			if err := tx.SaveProduct(product); err != nil {
				return err
			}
			sale.Items = append(sale.Items, SaleItem{
				ProductID: product.ID,
				Name:      product.Name,
				Quantity:  line.Quantity,
				Price:     line.Price,
				Cost:      line.Cost,
			})
			touched = append(touched, product)
			movements = append(movements, ledger.Movement{
				ProductID:   product.ID,
				SKU:         product.SKU,
				Delta:       -line.Quantity,
				NewStock:    product.Stock,
				Reason:      ledger.ReasonSale,
				ReferenceID: sale.ID,
				PostedAt:    now,
				ActorID:     actor.ID,
			})
		}
		return tx.AppendSale(sale)
	})
	if err != nil {
		return Sale{}, err
	}

	if s.audit != nil {
		details := fmt.Sprintf("Sale Completed: %.2f", sale.Total)
		_ = s.audit.Record(ctx, audit.TypeTransaction, sale.ID, details, audit.SeveritySuccess)
	}
	if s.mirror != nil {
		_ = s.mirror.SaleCommitted(ctx, sale)
		for i, p := range touched {
			_ = s.mirror.ProductUpserted(ctx, p)
			_ = s.mirror.MovementPosted(ctx, movements[i])
		}
	}
	return sale, nil
}

// Sales lists committed sales.
func (s *Service) Sales(ctx context.Context) ([]Sale, error) {
	return s.repo.ListSales(ctx)
}

// Sale returns one committed sale.
func (s *Service) Sale(ctx context.Context, id string) (Sale, error) {
	return s.repo.GetSale(ctx, id)
}

// resolvePaymentMethod falls back to the first configured method when
// the requested one is not in the allow-list.
func resolvePaymentMethod(requested string, configured []string) (string, error) {
	if len(configured) == 0 {
		return "", ErrNoPaymentMethods
	}
	for _, method := range configured {
		if method == requested {
			return method, nil
		}
	}
	return configured[0], nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
