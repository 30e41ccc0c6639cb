package repository

import (
	"errors"

	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FavoriteRepository favorite data access interface
type FavoriteRepository interface {
	Insert(favorite *domain.Favorite) (bool, error)
	Delete(userID, listingID uint64) error
	FindByUserAndListing(userID, listingID uint64) (*domain.Favorite, error)
	ListByUser(userID uint64, offset, limit int) ([]domain.Favorite, int64, error)
	UserIDsByListing(listingID uint64) ([]uint64, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new FavoriteRepository
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// Insert adds a favorite once per (user, listing). The unique index
// absorbs concurrent duplicates; the return value reports whether this
// call actually created the row.
func (r *favoriteRepository) Insert(favorite *domain.Favorite) (bool, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "listing_id"}},
		DoNothing: true,
	}).Create(favorite)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete removes a favorite, succeeding even when none exists
func (r *favoriteRepository) Delete(userID, listingID uint64) error {
	return r.db.
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		Delete(&domain.Favorite{}).Error
}

// FindByUserAndListing returns the favorite row, (nil, nil) when absent
func (r *favoriteRepository) FindByUserAndListing(userID, listingID uint64) (*domain.Favorite, error) {
	var favorite domain.Favorite
	err := r.db.
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		First(&favorite).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &favorite, nil
}

// ListByUser returns a user's favorites, newest first
func (r *favoriteRepository) ListByUser(userID uint64, offset, limit int) ([]domain.Favorite, int64, error) {
	var favorites []domain.Favorite
	var total int64

	query := r.db.Model(&domain.Favorite{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Listing").
		Preload("Listing.Images", sortImages).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&favorites).Error
	if err != nil {
		return nil, 0, err
	}
	return favorites, total, nil
}

// UserIDsByListing returns every user who favorited the listing
func (r *favoriteRepository) UserIDsByListing(listingID uint64) ([]uint64, error) {
	var userIDs []uint64
	err := r.db.Model(&domain.Favorite{}).
		Where("listing_id = ?", listingID).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
