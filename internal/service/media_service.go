package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/lokalo/lokalo-backend/pkg/cache"
	pkglogger "github.com/lokalo/lokalo-backend/pkg/logger"
	"github.com/lokalo/lokalo-backend/pkg/storage"
)

const maxImageSize = 10 * 1024 * 1024 // 10MB

// MediaService handles listing image uploads to S3-compatible storage
type MediaService struct {
	s3          *storage.S3Client
	listingRepo repository.ListingRepository
	cache       cache.Service
}

// NewMediaService creates a new MediaService. s3Client may be nil;
// uploads then fail with a configuration error.
func NewMediaService(s3Client *storage.S3Client, listingRepo repository.ListingRepository, cacheSvc cache.Service) *MediaService {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &MediaService{
		s3:          s3Client,
		listingRepo: listingRepo,
		cache:       cacheSvc,
	}
}

// UploadListingImage stores one photo for a listing the caller owns and
// appends it to the listing's image order
func (s *MediaService) UploadListingImage(ctx context.Context, listingID, ownerID uint64, file *multipart.FileHeader) (*domain.ListingImage, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("media: storage not configured")
	}
	if file.Size > maxImageSize {
		return nil, common.ErrInvalidInput
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	if !isImageExt(ext) {
		return nil, common.ErrInvalidInput
	}

	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.UserID != ownerID {
		return nil, common.ErrForbidden
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, common.ErrInvalidInput
	}

	key := storage.GenerateKey("listings", file.Filename)
	result, err := s.s3.Upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
	if err != nil {
		return nil, err
	}

	image := &domain.ListingImage{
		ListingID:  listingID,
		URL:        result.URL,
		StorageKey: result.Key,
	}
	if err := s.listingRepo.AddImage(image); err != nil {
		// Orphaned object, remove it again
		if delErr := s.s3.Delete(ctx, result.Key); delErr != nil {
			pkglogger.GetLogger().Warn().Err(delErr).Str("key", result.Key).Msg("orphan cleanup failed")
		}
		return nil, err
	}

	if err := s.cache.InvalidateListing(ctx, listingID); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Uint64("listing_id", listingID).Msg("listing cache invalidate failed")
	}

	pkglogger.GetLogger().Info().
		Uint64("listing_id", listingID).
		Str("key", result.Key).
		Int("size", len(data)).
		Msg("listing image uploaded")

	return image, nil
}

// DeleteListingImage removes the image row, then the stored object
// best-effort
func (s *MediaService) DeleteListingImage(ctx context.Context, imageID, ownerID uint64) error {
	image, err := s.listingRepo.FindImageByID(imageID)
	if err != nil {
		return err
	}
	if image == nil {
		return common.ErrNotFound
	}

	listing, err := s.listingRepo.FindByID(image.ListingID)
	if err != nil {
		return err
	}
	if listing == nil {
		return common.ErrListingNotFound
	}
	if listing.UserID != ownerID {
		return common.ErrForbidden
	}

	if err := s.listingRepo.DeleteImage(imageID); err != nil {
		return err
	}

	if s.s3 != nil && image.StorageKey != "" {
		if err := s.s3.Delete(ctx, image.StorageKey); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Str("key", image.StorageKey).Msg("image object delete failed")
		}
	}

	if err := s.cache.InvalidateListing(ctx, image.ListingID); err != nil {
		pkglogger.GetLogger().Debug().Err(err).Uint64("listing_id", image.ListingID).Msg("listing cache invalidate failed")
	}
	return nil
}

func isImageExt(ext string) bool {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}
