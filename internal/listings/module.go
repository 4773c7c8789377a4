// Package listings provides the cat listing bounded context module.
package listings

import (
	"katze_backend/internal/authz"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/listings/handler"
	"katze_backend/internal/listings/repository"
	"katze_backend/internal/listings/service"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/validator"
)

// Module is the listings bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the listings repository, service and handler.
func NewModule(repo repository.Repository, pipeline service.Pipeline, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Module {
	svc := service.New(repo, pipeline, bucket, can, val, log, m)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "listings"
}

// Service exposes the listings service to the requests and moderation modules.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts listings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Optional.Group("/listings"))
	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/listings"), ctx.SubmissionRateLimiter.RateLimit())
	m.handler.RegisterStaffRoutes(ctx.Staff.Group("/listings"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
