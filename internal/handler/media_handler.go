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

// MediaHandler handles listing image upload and removal
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadListingImage handles POST /api/v1/listings/:id/images
// @Summary Upload an image for an owned listing
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "listing id"
// @Param file formData file true "image file, 10MB max"
// @Success 201 {object} common.APIResponse{data=domain.ListingImage}
// @Router /listings/{id}/images [post]
func (h *MediaHandler) UploadListingImage(c *gin.Context) {
	listingID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid listing id", err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "File is required", err)
		return
	}

	image, err := h.mediaService.UploadListingImage(c.Request.Context(), listingID, middleware.GetUserID(c), file)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrListingNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Not the listing owner", err)
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Unsupported or oversized image", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Image upload failed", err)
		}
		return
	}

	common.CreatedResponse(c, image)
}

// DeleteListingImage handles DELETE /api/v1/listings/images/:imageId
// @Summary Remove an image from an owned listing
// @Tags media
// @Produce json
// @Security BearerAuth
// @Param imageId path int true "image id"
// @Success 204
// @Router /listings/images/{imageId} [delete]
func (h *MediaHandler) DeleteListingImage(c *gin.Context) {
	imageID, err := ginutil.ParamUint64(c, "imageId")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid image id", err)
		return
	}

	if err := h.mediaService.DeleteListingImage(c.Request.Context(), imageID, middleware.GetUserID(c)); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Image not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Not the listing owner", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Image removal failed", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}
