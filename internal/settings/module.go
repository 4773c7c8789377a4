// Package settings provides the public site settings module.
package settings

import (
	"katze_backend/internal/authz"
	apphttp "katze_backend/internal/http"
	"katze_backend/internal/settings/handler"
	"katze_backend/internal/settings/repository"
	"katze_backend/internal/settings/service"
	"katze_backend/platform/logger"
	"katze_backend/platform/validator"
)

// Module is the settings module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule wires the settings repository, service and handler.
func NewModule(repo repository.Repository, pipeline service.Pipeline, uploader service.BytesUploader, bucket string, can authz.Capability, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repo, pipeline, uploader, bucket, can, val, log)
	return &Module{handler: handler.New(svc)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// RegisterRoutes mounts the public read and the admin update.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/settings", m.handler.Get)
	ctx.Admin.PUT("/settings", m.handler.Update)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
