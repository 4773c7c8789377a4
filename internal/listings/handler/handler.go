package handler

import (
	"net/http"

	"katze_backend/internal/authz"
	"katze_backend/internal/intake"
	"katze_backend/internal/listings/service"
	"katze_backend/internal/listings/transport"
	"katze_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest = "invalid request"
	photoField        = "photo"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterPublicRoutes mounts read routes. The group identifies the caller when a token is sent.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListPublic)
	rg.GET("/:id", h.GetByID)
}

// RegisterProtectedRoutes mounts routes that require a logged-in caller.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup, submit ...gin.HandlerFunc) {
	rg.GET("/mine", h.ListMine)
	rg.POST("", append(submit, h.Create)...)
}

// RegisterStaffRoutes mounts edit and delete routes on the staff group.
func (h *Handler) RegisterStaffRoutes(rg *gin.RouterGroup) {
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateListingRequest
	if err := c.ShouldBind(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	photo, closePhoto, err := intake.FromForm(c.Request, photoField)
	if httpkit.HandleError(c, err) {
		return
	}
	defer closePhoto()

	listing, err := h.svc.Create(c.Request.Context(), authz.FromIdentity(identity), req, photo)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.ToListingResponse(listing))
}

func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	listing, err := h.svc.Get(c.Request.Context(), id, authz.FromIdentity(httpkit.GetIdentity(c)))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToListingResponse(listing))
}

func (h *Handler) ListPublic(c *gin.Context) {
	items, err := h.svc.ListPublic(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToListingListResponse(items))
}

func (h *Handler) ListMine(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	items, err := h.svc.ListMine(c.Request.Context(), authz.FromIdentity(identity))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToListingListResponse(items))
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	listing, err := h.svc.Update(c.Request.Context(), authz.FromIdentity(httpkit.GetIdentity(c)), id, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToListingResponse(listing))
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), authz.FromIdentity(httpkit.GetIdentity(c)), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}
