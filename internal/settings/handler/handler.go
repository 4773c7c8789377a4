package handler

import (
	"net/http"

	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/settings/service"
	"katze_backend/internal/settings/transport"
	"katze_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Get(c *gin.Context) {
	s, err := h.svc.Get(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(s))
}

func (h *Handler) Update(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.UpdateSettingsRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	hero, closeHero, err := intake.FromForm(c.Request, "heroImage")
	if httpkit.HandleError(c, err) {
		return
	}
	defer closeHero()
	qr, closeQR, err := intake.FromForm(c.Request, "qrImage")
	if httpkit.HandleError(c, err) {
		return
	}
	defer closeQR()

	s, err := h.svc.Update(c.Request.Context(), authz.FromIdentity(identity), req, service.Images{Hero: hero, QR: qr})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToSettingsResponse(s))
}
