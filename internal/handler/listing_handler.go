package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/service"
	"github.com/lokalo/lokalo-backend/pkg/ginutil"
)

var listingValidator = validator.New()

// ListingHandler handles listing requests
type ListingHandler struct {
	service service.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service service.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Create handles POST /api/v1/listings
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.CreateListingRequest true "listing payload"
// @Success 201 {object} common.APIResponse{data=domain.ListingResponse}
// @Router /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	var req domain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := listingValidator.Struct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	listing, err := h.service.Create(middleware.GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, common.ErrInvalidInput) {
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing data", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to create listing", err)
		return
	}

	common.CreatedResponse(c, listing)
}

// GetList handles GET /api/v1/listings
// @Summary List active listings
// @Tags listings
// @Produce json
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ListingSummary}
// @Router /listings [get]
func (h *ListingHandler) GetList(c *gin.Context) {
	page, limit := ginutil.Page(c, 20, 100)

	result, err := h.service.GetPublicList(c.Request.Context(), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list listings", err)
		return
	}

	common.SuccessResponse(c, result.Listings, result.Meta)
}

// Get handles GET /api/v1/listings/:id
// @Summary Get a listing by id
// @Tags listings
// @Produce json
// @Param id path int true "listing id"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	listing, err := h.service.Get(c.Request.Context(), id, middleware.GetUserID(c), hashIP(c.ClientIP()))
	if err != nil {
		if errors.Is(err, common.ErrListingNotFound) {
			common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to get listing", err)
		return
	}

	common.SuccessResponse(c, listing, nil)
}

// GetOwn handles GET /api/v1/my/listings
// @Summary List the authenticated user's listings in any status
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ListingSummary}
// @Router /my/listings [get]
func (h *ListingHandler) GetOwn(c *gin.Context) {
	page, limit := ginutil.Page(c, 20, 100)

	listings, meta, err := h.service.GetOwn(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list listings", err)
		return
	}

	common.SuccessResponse(c, listings, meta)
}

// Update handles PUT /api/v1/listings/:id
// @Summary Update a listing
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Param request body domain.UpdateListingRequest true "fields to update"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Router /listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	var req domain.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := listingValidator.Struct(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	listing, err := h.service.Update(c.Request.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		h.respondListingError(c, err, "Failed to update listing")
		return
	}

	common.SuccessResponse(c, listing, nil)
}

// UpdateStatus handles PATCH /api/v1/listings/:id/status
// @Summary Change a listing's status
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Param request body domain.UpdateListingStatusRequest true "new status"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Router /listings/{id}/status [patch]
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	var req domain.UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.UpdateStatus(c.Request.Context(), id, middleware.GetUserID(c), req.Status)
	if err != nil {
		h.respondListingError(c, err, "Failed to update listing status")
		return
	}

	common.SuccessResponse(c, listing, nil)
}

// Delete handles DELETE /api/v1/listings/:id
// @Summary Delete a listing with its images, favorites and conversations
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Success 204
// @Router /listings/{id} [delete]
func (h *ListingHandler) Delete(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		h.respondListingError(c, err, "Failed to delete listing")
		return
	}

	c.Status(http.StatusNoContent)
}

// Stats handles GET /api/v1/listings/:id/stats
// @Summary Get view statistics for an owned listing
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Success 200 {object} common.APIResponse{data=domain.ListingStatsResponse}
// @Router /listings/{id}/stats [get]
func (h *ListingHandler) Stats(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		h.respondListingError(c, err, "Failed to get listing stats")
		return
	}

	common.SuccessResponse(c, stats, nil)
}

func (h *ListingHandler) respondListingError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrListingNotFound):
		common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
	case errors.Is(err, common.ErrForbidden):
		common.ErrorResponse(c, http.StatusForbidden, "Not the listing owner", err)
	case errors.Is(err, common.ErrInvalidInput):
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing data", err)
	default:
		common.ErrorResponse(c, http.StatusInternalServerError, fallback, err)
	}
}

// hashIP anonymizes a client address before it reaches the analytics store.
func hashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:16])
}
