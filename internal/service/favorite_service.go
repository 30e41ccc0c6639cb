package service

import (
	"fmt"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
)

// FavoriteService favorite business logic
type FavoriteService interface {
	Add(userID, listingID uint64) (*domain.FavoriteResponse, error)
	Remove(userID, listingID uint64) error
	GetList(userID uint64, page, limit int) ([]*domain.FavoriteResponse, *common.Meta, error)
}

type favoriteService struct {
	favoriteRepo    repository.FavoriteRepository
	listingRepo     repository.ListingRepository
	notificationSvc NotificationService
}

// NewFavoriteService creates a new FavoriteService
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, listingRepo repository.ListingRepository, notificationSvc NotificationService) FavoriteService {
	return &favoriteService{
		favoriteRepo:    favoriteRepo,
		listingRepo:     listingRepo,
		notificationSvc: notificationSvc,
	}
}

// Add bookmarks a listing. Adding twice is a no-op that returns the
// favorite either way; only the first insert notifies the owner.
func (s *favoriteService) Add(userID, listingID uint64) (*domain.FavoriteResponse, error) {
	listing, err := s.listingRepo.FindByID(listingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}
	if listing.UserID == userID {
		return nil, common.ErrInvalidInput
	}

	favorite := &domain.Favorite{
		UserID:    userID,
		ListingID: listingID,
	}
	created, err := s.favoriteRepo.Insert(favorite)
	if err != nil {
		return nil, err
	}

	if created {
		relatedID := listingID
		relatedType := "listing"
		notify(s.notificationSvc, listing.UserID, domain.NotificationTypeListingInterest,
			fmt.Sprintf("Someone saved your listing %q", listing.Title), &relatedID, &relatedType)
	} else {
		existing, err := s.favoriteRepo.FindByUserAndListing(userID, listingID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			favorite = existing
		}
	}

	favorite.Listing = listing
	return favorite.ToResponse(), nil
}

// Remove deletes the bookmark; removing a non-existent one succeeds
func (s *favoriteService) Remove(userID, listingID uint64) error {
	return s.favoriteRepo.Delete(userID, listingID)
}

// GetList returns the user's favorites with listing previews
func (s *favoriteService) GetList(userID uint64, page, limit int) ([]*domain.FavoriteResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	favorites, total, err := s.favoriteRepo.ListByUser(userID, offset, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.FavoriteResponse, len(favorites))
	for i := range favorites {
		responses[i] = favorites[i].ToResponse()
	}
	return responses, common.NewMeta(page, limit, total), nil
}
