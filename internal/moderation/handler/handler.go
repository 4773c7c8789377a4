package handler

import (
	"net/http"
	"strings"

	"katze_backend/internal/authz"
	"katze_backend/internal/moderation/service"
	"katze_backend/internal/moderation/transport"
	"katze_backend/platform/apperr"
	"katze_backend/platform/httpkit"
	"katze_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const msgInvalidRequest = "invalid request"

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pending/:kind", h.ListPending)
	rg.GET("/:kind", h.List)
	rg.POST("/:kind/:id/transitions", h.Transition)
}

func (h *Handler) ListPending(c *gin.Context) {
	kind, err := service.ParseKind(c.Param("kind"))
	if httpkit.HandleError(c, err) {
		return
	}

	page, err := h.svc.ListPending(c.Request.Context(), actor(c), kind)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToPageResponse(page))
}

// List accepts ?state=a,b or repeated state parameters. Requests can also be
// narrowed to one listing with ?listingId=.
func (h *Handler) List(c *gin.Context) {
	kind, err := service.ParseKind(c.Param("kind"))
	if httpkit.HandleError(c, err) {
		return
	}

	var states []string
	for _, v := range c.QueryArray("state") {
		states = append(states, strings.Split(v, ",")...)
	}

	var page service.Page
	if raw := c.Query("listingId"); raw != "" && kind == service.KindRequests {
		listingID, perr := uuid.Parse(raw)
		if perr != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
			return
		}
		page, err = h.svc.ListListingRequests(c.Request.Context(), actor(c), listingID, states)
	} else {
		page, err = h.svc.List(c.Request.Context(), actor(c), kind, states)
	}
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToPageResponse(page))
}

func (h *Handler) Transition(c *gin.Context) {
	kind, err := service.ParseKind(c.Param("kind"))
	if httpkit.HandleError(c, err) {
		return
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.HandleError(c, apperr.Validation("validation failed").WithDetails(validator.FieldErrors(err)))
		return
	}

	page, err := h.svc.Transition(c.Request.Context(), actor(c), kind, id, strings.TrimSpace(req.To))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToItemResponse(page))
}

func actor(c *gin.Context) authz.Principal {
	return authz.FromIdentity(httpkit.GetIdentity(c))
}
