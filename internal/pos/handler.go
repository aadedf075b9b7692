package pos

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/platform/httpx"
)

// Enqueuer schedules background work after a committed sale. Optional;
// a nil enqueuer skips scheduling.
type Enqueuer interface {
	EnqueueLowStockScan(ctx context.Context) error
}

// Handler wires HTTP endpoints for the point of sale.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueue  Enqueuer
	validate *validator.Validate
}

// NewHandler constructs the POS handler.
func NewHandler(logger *slog.Logger, service *Service, enqueue Enqueuer) *Handler {
	return &Handler{logger: logger, service: service, enqueue: enqueue, validate: validator.New()}
}

// MountRoutes registers POS routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/checkout", h.handleCheckout)
	r.Get("/", h.handleList)
	r.Get("/{id}", h.handleGet)
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var input CheckoutInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	sale, err := h.service.Checkout(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if h.enqueue != nil {
		if err := h.enqueue.EnqueueLowStockScan(r.Context()); err != nil {
			h.logger.Warn("enqueue low stock scan", slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	sales, err := h.service.Sales(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sales)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	sale, err := h.service.Sale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrSaleNotFound), errors.Is(err, ledger.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ledger.ErrInvalidQuantity), errors.Is(err, ErrNoPaymentMethods):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ledger.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	default:
		h.logger.Error("pos request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
