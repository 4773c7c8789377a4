// Package requests provides the adoption request bounded context module.
package requests

import (
	"katze_backend/internal/authz"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/requests/handler"
	"katze_backend/internal/requests/repository"
	"katze_backend/internal/requests/service"
	"katze_backend/platform/logger"
	"katze_backend/platform/metrics"
	"katze_backend/platform/phone"
	"katze_backend/platform/validator"
)

// Module is the adoption requests bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule wires the requests repository, service and handler. listings is
// the listings service seen through the narrow port the requests service needs.
func NewModule(repo repository.Repository, listings service.Listings, dispatcher service.Dispatcher, phones *phone.Normalizer, can authz.Capability, val *validator.Validator, log *logger.Logger, m *metrics.Metrics) *Module {
	svc := service.New(repo, listings, dispatcher, phones, can, val, log, m)
	return &Module{handler: handler.New(svc), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "requests"
}

// Service exposes the requests service to the moderation module.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts request routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Optional.Group("/requests"), ctx.SubmissionRateLimiter.RateLimit())
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
