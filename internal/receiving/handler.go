package receiving

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/platform/httpx"
)

// Handler wires HTTP endpoints for stock intake.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the receiving handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers receiving routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/batches", h.handleBatch)
	r.Get("/barcode/{code}", h.handleBarcode)
	r.Get("/incoming", h.handleListIncoming)
	r.Post("/incoming", h.handleRegisterIncoming)
	r.Post("/incoming/{id}/status", h.handleMarkIncoming)
}

type batchRequest struct {
	Lines []BatchLine `json:"lines" validate:"required,min=1,dive"`
}

func (h *Handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.ReceiveBatch(r.Context(), req.Lines)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) handleBarcode(w http.ResponseWriter, r *http.Request) {
	location := ledger.StockLocation(r.URL.Query().Get("location"))
	product, err := h.service.ResolveBarcode(r.Context(), chi.URLParam(r, "code"), location)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleListIncoming(w http.ResponseWriter, r *http.Request) {
	deliveries, err := h.service.Incoming(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, deliveries)
}

type incomingRequest struct {
	Supplier   string         `json:"supplier" validate:"required"`
	DriverName string         `json:"driverName"`
	Items      []IncomingItem `json:"items" validate:"required,min=1"`
}

func (h *Handler) handleRegisterIncoming(w http.ResponseWriter, r *http.Request) {
	var req incomingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	delivery, err := h.service.RegisterIncoming(r.Context(), req.Supplier, req.DriverName, req.Items)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, delivery)
}

type markIncomingRequest struct {
	Status IncomingStatus `json:"status" validate:"required"`
	Broken map[string]int `json:"broken"`
}

func (h *Handler) handleMarkIncoming(w http.ResponseWriter, r *http.Request) {
	var req markIncomingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	delivery, err := h.service.MarkIncoming(r.Context(), chi.URLParam(r, "id"), req.Status, req.Broken)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, delivery)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrIncomingNotFound), errors.Is(err, ledger.ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ledger.ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("receiving request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
