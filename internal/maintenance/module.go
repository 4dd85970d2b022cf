// Package maintenance provides the maintenance lifecycle module.
package maintenance

import (
	"fieldservice_backend/internal/adapters/storage"
	"fieldservice_backend/internal/events"
	apphttp "fieldservice_backend/internal/http"
	"fieldservice_backend/internal/maintenance/handler"
	"fieldservice_backend/internal/maintenance/repository"
	"fieldservice_backend/internal/maintenance/service"
	"fieldservice_backend/internal/scheduler"
	"fieldservice_backend/platform/logger"
	"fieldservice_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the maintenance lifecycle module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new maintenance module with all dependencies wired.
// store and deadlines may be nil when that infrastructure is disabled.
func NewModule(
	pool *pgxpool.Pool,
	val *validator.Validator,
	directory service.TechnicianDirectory,
	store storage.Service,
	deadlines scheduler.DeadlineScheduler,
	bus events.Bus,
	cfg service.Config,
	log *logger.Logger,
) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, directory, store, deadlines, bus, cfg, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "maintenance"
}

// RegisterRoutes registers the module's routes under /api/maintenance
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	maintenance := ctx.Protected.Group("/maintenance")
	m.handler.RegisterRoutes(maintenance)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
