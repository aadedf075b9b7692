package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ironmart/ironmart/internal/accounting"
	"github.com/ironmart/ironmart/internal/audit"
	"github.com/ironmart/ironmart/internal/auth"
	"github.com/ironmart/ironmart/internal/ledger"
	"github.com/ironmart/ironmart/internal/pos"
	"github.com/ironmart/ironmart/internal/receiving"
	"github.com/ironmart/ironmart/internal/settings"
	"github.com/ironmart/ironmart/internal/transfer"
	"github.com/ironmart/ironmart/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	LedgerHandler     *ledger.Handler
	POSHandler        *pos.Handler
	ReceivingHandler  *receiving.Handler
	TransferHandler   *transfer.Handler
	AuditHandler      *audit.Handler
	AuthHandler       *auth.Handler
	SettingsHandler   *settings.Handler
	AccountingHandler *accounting.Handler
	JobsHandler       *jobs.Handler
}

// NewRouter constructs the chi.Router with the shared defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", params.LedgerHandler.MountRoutes)
		r.Route("/sales", params.POSHandler.MountRoutes)
		r.Route("/receiving", params.ReceivingHandler.MountRoutes)
		r.Route("/deliveries", params.TransferHandler.MountRoutes)
		r.Route("/audit", params.AuditHandler.MountRoutes)
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/settings", params.SettingsHandler.MountRoutes)
		r.Route("/accounting", params.AccountingHandler.MountRoutes)
		if params.JobsHandler != nil {
			r.Route("/jobs", params.JobsHandler.MountRoutes)
		}
	})

	return r
}
