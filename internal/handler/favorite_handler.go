package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/service"
	"github.com/lokalo/lokalo-backend/pkg/ginutil"
)

// FavoriteHandler handles favorite requests
type FavoriteHandler struct {
	service service.FavoriteService
}

// NewFavoriteHandler creates a new FavoriteHandler
func NewFavoriteHandler(service service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{service: service}
}

// AddFavoriteRequest add favorite request
type AddFavoriteRequest struct {
	ListingID uint64 `json:"listing_id" binding:"required"`
}

// Add handles POST /api/v1/favorites
// @Summary Save a listing to favorites
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddFavoriteRequest true "listing to save"
// @Success 201 {object} common.APIResponse{data=domain.FavoriteResponse}
// @Router /favorites [post]
func (h *FavoriteHandler) Add(c *gin.Context) {
	var req AddFavoriteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	favorite, err := h.service.Add(middleware.GetUserID(c), req.ListingID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrListingNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Cannot favorite your own listing", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to add favorite", err)
		}
		return
	}

	common.CreatedResponse(c, favorite)
}

// Remove handles DELETE /api/v1/favorites/:listingId
// @Summary Remove a listing from favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param listingId path int true "listing id"
// @Success 204
// @Router /favorites/{listingId} [delete]
func (h *FavoriteHandler) Remove(c *gin.Context) {
	listingID, err := ginutil.ParamUint64(c, "listingId")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	if err := h.service.Remove(middleware.GetUserID(c), listingID); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to remove favorite", err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetList handles GET /api/v1/favorites
// @Summary List the authenticated user's favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.FavoriteResponse}
// @Router /favorites [get]
func (h *FavoriteHandler) GetList(c *gin.Context) {
	page, limit := ginutil.Page(c, 20, 100)

	favorites, meta, err := h.service.GetList(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list favorites", err)
		return
	}

	common.SuccessResponse(c, favorites, meta)
}
