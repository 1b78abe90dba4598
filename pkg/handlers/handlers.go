package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/chris/funding-ledger/pkg/api"
	"github.com/chris/funding-ledger/pkg/coordinator"
	"github.com/chris/funding-ledger/pkg/handlers/accounts"
	"github.com/chris/funding-ledger/pkg/handlers/ledger"
	"github.com/chris/funding-ledger/pkg/handlers/notifications"
	"github.com/chris/funding-ledger/pkg/handlers/projects"
	"github.com/chris/funding-ledger/pkg/handlers/respond"
	"github.com/chris/funding-ledger/pkg/handlers/wallets"
	"github.com/chris/funding-ledger/pkg/middleware"
	"github.com/chris/funding-ledger/pkg/provisioner"
	"github.com/chris/funding-ledger/pkg/storage"
	"github.com/chris/funding-ledger/pkg/wallet"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the services the API is built on.
type Dependencies struct {
	Store       storage.Storage
	Coordinator *coordinator.Coordinator
	Wallet      *wallet.Service
	Projects    *provisioner.ProjectService
	// Health reports whether storage is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

// ApiHandler implements the API server interface by composing the
// per-resource handlers.
type ApiHandler struct {
	*accounts.AccountsHandler
	*wallets.WalletsHandler
	*projects.ProjectsHandler
	*ledger.LedgerHandler
	*notifications.NotificationsHandler

	health func(ctx context.Context) error
}

// NewApiHandler wires the per-resource handlers.
func NewApiHandler(deps Dependencies) *ApiHandler {
	return &ApiHandler{
		AccountsHandler:      accounts.NewAccountsHandler(deps.Store, deps.Wallet),
		WalletsHandler:       wallets.NewWalletsHandler(deps.Wallet),
		ProjectsHandler:      projects.NewProjectsHandler(deps.Projects, deps.Store),
		LedgerHandler:        ledger.NewLedgerHandler(deps.Coordinator),
		NotificationsHandler: notifications.NewNotificationsHandler(deps.Store),
		health:               deps.Health,
	}
}

// Make sure we conform to the interface
var _ api.ServerInterface = (*ApiHandler)(nil)

// Healthz reports liveness and storage reachability.
func (h *ApiHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			slog.Error("health check failed", slog.String("error", err.Error()))
			respond.JSON(w, http.StatusServiceUnavailable, api.Health{Status: "unavailable"})
			return
		}
	}
	respond.JSON(w, http.StatusOK, api.Health{Status: "ok"})
}

// NewRouter mounts the API and /metrics on a chi router with request logging.
func NewRouter(h api.ServerInterface, logger *slog.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.NewStructuredLogger(logger))

	router.Handle("/metrics", promhttp.Handler())

	return api.HandlerWithOptions(h, router, func(w http.ResponseWriter, r *http.Request, err error) {
		respond.BadRequest(w, err.Error())
	})
}
