// Package moderation provides the staff moderation surface module.
package moderation

import (
	"katze_backend/internal/authz"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/moderation/handler"
	"katze_backend/internal/moderation/service"
	"katze_backend/platform/validator"
)

// Module is the moderation module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the moderation surface over the three entity services.
func NewModule(listings service.Listings, reports service.Reports, requests service.Requests, can authz.Capability, val *validator.Validator) *Module {
	svc := service.New(listings, reports, requests, can)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "moderation"
}

// RegisterRoutes mounts moderation routes on the staff group.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Staff)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
