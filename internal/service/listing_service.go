package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/insights"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/lokalo/lokalo-backend/pkg/cache"
	"github.com/lokalo/lokalo-backend/pkg/logger"
	"github.com/lokalo/lokalo-backend/pkg/storage"
)

// ListingPage is the cached shape of one public listing page
type ListingPage struct {
	Listings []*domain.ListingSummary `json:"listings"`
	Meta     *common.Meta             `json:"meta"`
}

// ListingService listing business logic
type ListingService interface {
	Create(userID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error)
	Get(ctx context.Context, id, viewerID uint64, ipHash string) (*domain.ListingResponse, error)
	GetPublicList(ctx context.Context, page, limit int) (*ListingPage, error)
	GetOwn(userID uint64, page, limit int) ([]*domain.ListingSummary, *common.Meta, error)
	Update(ctx context.Context, id, userID uint64, req *domain.UpdateListingRequest) (*domain.ListingResponse, error)
	UpdateStatus(ctx context.Context, id, userID uint64, status string) (*domain.ListingResponse, error)
	Delete(ctx context.Context, id, userID uint64) error
	Stats(ctx context.Context, id, userID uint64) (*domain.ListingStatsResponse, error)
}

type listingService struct {
	listingRepo     repository.ListingRepository
	favoriteRepo    repository.FavoriteRepository
	notificationSvc NotificationService
	cache           cache.Service
	insights        *insights.Service
	storage         *storage.S3Client
}

// NewListingService creates a new ListingService. cache, insights, and
// storage may be nil or inert; the listing flow works without them.
func NewListingService(
	listingRepo repository.ListingRepository,
	favoriteRepo repository.FavoriteRepository,
	notificationSvc NotificationService,
	cacheSvc cache.Service,
	insightsSvc *insights.Service,
	storageClient *storage.S3Client,
) ListingService {
	if cacheSvc == nil {
		cacheSvc = cache.NewService(nil)
	}
	return &listingService{
		listingRepo:     listingRepo,
		favoriteRepo:    favoriteRepo,
		notificationSvc: notificationSvc,
		cache:           cacheSvc,
		insights:        insightsSvc,
		storage:         storageClient,
	}
}

// Create validates and persists a new listing with its child rows
func (s *listingService) Create(userID uint64, req *domain.CreateListingRequest) (*domain.ListingResponse, error) {
	if !domain.ValidListingCategory(req.Category) {
		return nil, common.ErrInvalidInput
	}
	if !domain.ValidListingAction(req.Action) {
		return nil, common.ErrInvalidInput
	}
	status := req.Status
	if status == "" {
		status = domain.ListingStatusDraft
	}
	if !domain.ValidListingStatus(status) {
		return nil, common.ErrInvalidInput
	}
	if req.Price < 0 {
		return nil, common.ErrInvalidInput
	}

	listing := &domain.Listing{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Location:    req.Location,
		Status:      status,
		Action:      req.Action,
		ExpiresAt:   req.ExpiresAt,
		Attributes:  attributesFromInput(req.Attributes),
		Features:    featuresFromInput(req.Features),
	}
	if req.VehicleDetails != nil {
		listing.VehicleDetails = vehicleFromInput(req.VehicleDetails)
	}
	if req.RealEstateDetails != nil {
		listing.RealEstateDetails = realEstateFromInput(req.RealEstateDetails)
	}

	if err := s.listingRepo.Create(listing); err != nil {
		return nil, err
	}

	relatedID := listing.ID
	relatedType := "listing"
	notify(s.notificationSvc, userID, domain.NotificationTypeListingCreated,
		fmt.Sprintf("Your listing %q is now %s", listing.Title, listing.Status), &relatedID, &relatedType)

	s.invalidatePages(context.Background())
	return listing.ToResponse(), nil
}

// Get returns the full listing. Every non-owner view bumps the counter
// and emits an insights event; the rendered detail is cached, so the
// counter shown can lag by up to the cache TTL.
func (s *listingService) Get(ctx context.Context, id, viewerID uint64, ipHash string) (*domain.ListingResponse, error) {
	if data, err := s.cache.GetListing(ctx, id); err == nil && len(data) > 0 {
		var resp domain.ListingResponse
		if err := json.Unmarshal(data, &resp); err == nil {
			s.recordView(&resp, viewerID, ipHash)
			return &resp, nil
		}
	}

	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}

	resp := listing.ToResponse()
	if err := s.cache.SetListing(ctx, id, resp); err != nil {
		logger.GetLogger().Debug().Err(err).Uint64("listing_id", id).Msg("listing cache set failed")
	}

	s.recordView(resp, viewerID, ipHash)
	return resp, nil
}

// recordView counts a view unless the viewer owns the listing
func (s *listingService) recordView(resp *domain.ListingResponse, viewerID uint64, ipHash string) {
	if resp.Owner != nil && resp.Owner.ID == viewerID {
		return
	}
	if err := s.listingRepo.IncrementViewCount(resp.ID); err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("listing_id", resp.ID).Msg("view count update failed")
	}
	s.insights.RecordView(resp.ID, viewerID, ipHash)
}

// GetPublicList returns one page of ACTIVE listings, newest first, served
// from cache when possible
func (s *listingService) GetPublicList(ctx context.Context, page, limit int) (*ListingPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	if data, err := s.cache.GetListingPage(ctx, page, limit); err == nil && len(data) > 0 {
		var cached ListingPage
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	offset := (page - 1) * limit
	listings, total, err := s.listingRepo.ListActive(offset, limit)
	if err != nil {
		return nil, err
	}

	result := &ListingPage{
		Listings: summarize(listings),
		Meta:     common.NewMeta(page, limit, total),
	}
	if err := s.cache.SetListingPage(ctx, page, limit, result); err != nil {
		logger.GetLogger().Debug().Err(err).Int("page", page).Msg("listing page cache set failed")
	}
	return result, nil
}

// GetOwn returns the caller's listings in every status, newest first
func (s *listingService) GetOwn(userID uint64, page, limit int) ([]*domain.ListingSummary, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	listings, total, err := s.listingRepo.ListByUser(userID, offset, limit)
	if err != nil {
		return nil, nil, err
	}
	return summarize(listings), common.NewMeta(page, limit, total), nil
}

// Update applies an owner's partial edit. A price change fans out
// PRICE_UPDATE notifications to everyone who favorited the listing,
// after the update is committed.
func (s *listingService) Update(ctx context.Context, id, userID uint64, req *domain.UpdateListingRequest) (*domain.ListingResponse, error) {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, common.ErrForbidden
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	priceChanged := false
	if req.Price != nil && *req.Price != listing.Price {
		if *req.Price < 0 {
			return nil, common.ErrInvalidInput
		}
		updates["price"] = *req.Price
		priceChanged = true
	}
	if req.SubCategory != nil {
		updates["sub_category"] = *req.SubCategory
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}

	if len(updates) > 0 {
		if err := s.listingRepo.Updates(id, updates); err != nil {
			return nil, err
		}
	}
	if req.Attributes != nil {
		if err := s.listingRepo.ReplaceAttributes(id, attributesFromInput(req.Attributes)); err != nil {
			return nil, err
		}
	}
	if req.Features != nil {
		if err := s.listingRepo.ReplaceFeatures(id, featuresFromInput(req.Features)); err != nil {
			return nil, err
		}
	}
	if req.VehicleDetails != nil {
		details := vehicleFromInput(req.VehicleDetails)
		details.ListingID = id
		if err := s.listingRepo.UpsertVehicleDetails(details); err != nil {
			return nil, err
		}
	}
	if req.RealEstateDetails != nil {
		details := realEstateFromInput(req.RealEstateDetails)
		details.ListingID = id
		if err := s.listingRepo.UpsertRealEstateDetails(details); err != nil {
			return nil, err
		}
	}

	if priceChanged {
		s.fanOutToFavoriters(id, domain.NotificationTypePriceUpdate,
			fmt.Sprintf("Price for %q changed to %.2f", listing.Title, *req.Price))
	}

	s.invalidateListing(ctx, id)

	updated, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, common.ErrListingNotFound
	}
	return updated.ToResponse(), nil
}

// UpdateStatus changes the lifecycle status. Moving to SOLD or RENTED
// tells everyone who favorited the listing.
func (s *listingService) UpdateStatus(ctx context.Context, id, userID uint64, status string) (*domain.ListingResponse, error) {
	if !domain.ValidListingStatus(status) {
		return nil, common.ErrInvalidInput
	}

	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, common.ErrForbidden
	}

	if err := s.listingRepo.UpdateStatus(id, status); err != nil {
		return nil, err
	}

	if status != listing.Status && (status == domain.ListingStatusSold || status == domain.ListingStatusRented) {
		s.fanOutToFavoriters(id, domain.NotificationTypeListingSold,
			fmt.Sprintf("%q is no longer available", listing.Title))
	}

	s.invalidateListing(ctx, id)

	listing.Status = status
	return listing.ToResponse(), nil
}

// Delete removes the listing and all dependent rows in one transaction,
// then cleans up stored images best-effort
func (s *listingService) Delete(ctx context.Context, id, userID uint64) error {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return err
	}
	if listing == nil {
		return common.ErrListingNotFound
	}
	if listing.UserID != userID {
		return common.ErrForbidden
	}

	if err := s.listingRepo.DeleteWithDependents(id); err != nil {
		return err
	}

	if s.storage != nil {
		for _, image := range listing.Images {
			if image.StorageKey == "" {
				continue
			}
			if err := s.storage.Delete(ctx, image.StorageKey); err != nil {
				logger.GetLogger().Warn().Err(err).Str("key", image.StorageKey).Msg("image cleanup failed")
			}
		}
	}

	s.invalidateListing(ctx, id)
	return nil
}

// Stats returns the owner's view counts for one listing. Without
// ClickHouse only the raw counter is populated.
func (s *listingService) Stats(ctx context.Context, id, userID uint64) (*domain.ListingStatsResponse, error) {
	listing, err := s.listingRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.UserID != userID {
		return nil, common.ErrForbidden
	}

	// The ClickHouse aggregates are the expensive part; the raw counter
	// comes from the row just read and stays fresh on cache hits.
	cacheKey := fmt.Sprintf("lokalo:stats:%d", id)
	var cached domain.ListingStatsResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		cached.ViewCount = listing.ViewCount
		return &cached, nil
	}

	stats := &domain.ListingStatsResponse{
		ListingID: id,
		ViewCount: listing.ViewCount,
	}

	viewStats, err := s.insights.Stats(ctx, id)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("listing_id", id).Msg("insights stats failed")
		return stats, nil
	}
	stats.TodayViews = viewStats.TodayViews
	stats.WeekViews = viewStats.WeekViews
	stats.TotalViews = viewStats.TotalViews
	stats.UniqueViewers = viewStats.UniqueViewers

	if err := s.cache.Set(ctx, cacheKey, stats, cache.TTLStats); err != nil {
		logger.GetLogger().Debug().Err(err).Uint64("listing_id", id).Msg("stats cache set failed")
	}
	return stats, nil
}

// fanOutToFavoriters notifies every user who favorited the listing
func (s *listingService) fanOutToFavoriters(listingID uint64, notifType, message string) {
	userIDs, err := s.favoriteRepo.UserIDsByListing(listingID)
	if err != nil {
		logger.GetLogger().Warn().Err(err).Uint64("listing_id", listingID).Msg("favoriter lookup failed")
		return
	}
	relatedType := "listing"
	for _, uid := range userIDs {
		relatedID := listingID
		notify(s.notificationSvc, uid, notifType, message, &relatedID, &relatedType)
	}
}

func (s *listingService) invalidateListing(ctx context.Context, id uint64) {
	if err := s.cache.InvalidateListing(ctx, id); err != nil {
		logger.GetLogger().Debug().Err(err).Uint64("listing_id", id).Msg("listing cache invalidate failed")
	}
	s.invalidatePages(ctx)
}

func (s *listingService) invalidatePages(ctx context.Context) {
	if err := s.cache.InvalidateListingPages(ctx); err != nil {
		logger.GetLogger().Debug().Err(err).Msg("listing page cache invalidate failed")
	}
}

func summarize(listings []domain.Listing) []*domain.ListingSummary {
	summaries := make([]*domain.ListingSummary, len(listings))
	for i := range listings {
		summaries[i] = listings[i].ToSummary()
	}
	return summaries
}

func attributesFromInput(inputs []domain.AttributeInput) []domain.ListingAttribute {
	attrs := make([]domain.ListingAttribute, len(inputs))
	for i, in := range inputs {
		attrs[i] = domain.ListingAttribute{Name: in.Name, Value: in.Value}
	}
	return attrs
}

func featuresFromInput(inputs []domain.FeatureInput) []domain.ListingFeature {
	features := make([]domain.ListingFeature, len(inputs))
	for i, in := range inputs {
		features[i] = domain.ListingFeature{Name: in.Name, Enabled: in.Enabled}
	}
	return features
}

func vehicleFromInput(in *domain.VehicleDetailsInput) *domain.VehicleDetails {
	return &domain.VehicleDetails{
		Make:         in.Make,
		Model:        in.Model,
		Year:         in.Year,
		Mileage:      in.Mileage,
		FuelType:     in.FuelType,
		Transmission: in.Transmission,
		Color:        in.Color,
	}
}

func realEstateFromInput(in *domain.RealEstateDetailsInput) *domain.RealEstateDetails {
	return &domain.RealEstateDetails{
		PropertyType: in.PropertyType,
		Rooms:        in.Rooms,
		AreaSqm:      in.AreaSqm,
		Floor:        in.Floor,
		TotalFloors:  in.TotalFloors,
		YearBuilt:    in.YearBuilt,
		Furnished:    in.Furnished,
		Heating:      in.Heating,
	}
}
