// Package technicians provides the technician directory module.
package technicians

import (
	apphttp "fieldservice_backend/internal/http"
	"fieldservice_backend/internal/technicians/handler"
	"fieldservice_backend/internal/technicians/repository"
	"fieldservice_backend/internal/technicians/service"
	"fieldservice_backend/platform/httpkit"
	"fieldservice_backend/platform/logger"
	"fieldservice_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the technician directory module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new technicians module with all dependencies wired
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc, val)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "technicians"
}

// RegisterRoutes registers the module's routes under /api/technicians.
// Roster management is coordinator-only.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	technicians := ctx.Protected.Group("/technicians")
	technicians.Use(httpkit.RequireRole(httpkit.RoleCoordinator))
	m.handler.RegisterRoutes(technicians)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
