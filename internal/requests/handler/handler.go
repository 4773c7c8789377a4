package handler

import (
	"net/http"

	"katze_backend/internal/authz"
	"katze_backend/internal/requests/service"
	"katze_backend/internal/requests/transport"
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

// RegisterRoutes mounts request routes on a group that identifies the caller when a token is sent.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, submit ...gin.HandlerFunc) {
	rg.POST("", append(submit, h.Create)...)
}

func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	created, err := h.svc.Create(c.Request.Context(), authz.FromIdentity(httpkit.GetIdentity(c)), req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToRequestResponse(created))
}
