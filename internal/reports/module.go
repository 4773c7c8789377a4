// Package reports provides the lost-pet report bounded context module.
package reports

import (
	"katze_backend/internal/authz"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/reports/handler"
	"katze_backend/internal/reports/repository"
	"katze_backend/internal/reports/service"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/validator"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the reports repository, service and handler.
func NewModule(repo repository.Repository, pipeline service.Pipeline, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Module {
	svc := service.New(repo, pipeline, bucket, can, val, log, m)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// Service exposes the reports service to the moderation module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts reports routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.V1.Group("/reports"))
	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/reports"), ctx.SubmissionRateLimiter.RateLimit())
	m.handler.RegisterStaffRoutes(ctx.Staff.Group("/reports"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
