package repository

import (
	"errors"

	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository listing data access interface
type ListingRepository interface {
	Create(listing *domain.Listing) error
	FindByID(id uint64) (*domain.Listing, error)
	ListActive(offset, limit int) ([]domain.Listing, int64, error)
	ListByUser(userID uint64, offset, limit int) ([]domain.Listing, int64, error)
	Updates(id uint64, updates map[string]interface{}) error
	UpdateStatus(id uint64, status string) error
	IncrementViewCount(id uint64) error
	ReplaceAttributes(listingID uint64, attrs []domain.ListingAttribute) error
	ReplaceFeatures(listingID uint64, features []domain.ListingFeature) error
	UpsertVehicleDetails(details *domain.VehicleDetails) error
	UpsertRealEstateDetails(details *domain.RealEstateDetails) error
	AddImage(image *domain.ListingImage) error
	FindImageByID(id uint64) (*domain.ListingImage, error)
	DeleteImage(id uint64) error
	DeleteWithDependents(id uint64) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// Create inserts a listing together with its child rows
func (r *listingRepository) Create(listing *domain.Listing) error {
	return r.db.Create(listing).Error
}

// FindByID returns a listing with all child rows preloaded, (nil, nil) when absent
func (r *listingRepository) FindByID(id uint64) (*domain.Listing, error) {
	var listing domain.Listing
	err := r.db.
		Preload("User").
		Preload("Images", sortImages).
		Preload("Attributes").
		Preload("Features").
		Preload("VehicleDetails").
		Preload("RealEstateDetails").
		Where("id = ?", id).
		First(&listing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &listing, nil
}

// ListActive returns publicly visible listings, newest first
func (r *listingRepository) ListActive(offset, limit int) ([]domain.Listing, int64, error) {
	var listings []domain.Listing
	var total int64

	query := r.db.Model(&domain.Listing{}).Where("status = ?", domain.ListingStatusActive)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Images", sortImages).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// ListByUser returns a user's own listings regardless of status, newest first
func (r *listingRepository) ListByUser(userID uint64, offset, limit int) ([]domain.Listing, int64, error) {
	var listings []domain.Listing
	var total int64

	query := r.db.Model(&domain.Listing{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Images", sortImages).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&listings).Error
	if err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Updates applies a partial column update
func (r *listingRepository) Updates(id uint64, updates map[string]interface{}) error {
	result := r.db.Model(&domain.Listing{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStatus changes only the status column
func (r *listingRepository) UpdateStatus(id uint64, status string) error {
	result := r.db.Model(&domain.Listing{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementViewCount bumps the counter without racing concurrent readers
func (r *listingRepository) IncrementViewCount(id uint64) error {
	return r.db.Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

// ReplaceAttributes swaps the attribute set in one transaction
func (r *listingRepository) ReplaceAttributes(listingID uint64, attrs []domain.ListingAttribute) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).Delete(&domain.ListingAttribute{}).Error; err != nil {
			return err
		}
		if len(attrs) == 0 {
			return nil
		}
		for i := range attrs {
			attrs[i].ID = 0
			attrs[i].ListingID = listingID
		}
		return tx.Create(&attrs).Error
	})
}

// ReplaceFeatures swaps the feature set in one transaction
func (r *listingRepository) ReplaceFeatures(listingID uint64, features []domain.ListingFeature) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", listingID).Delete(&domain.ListingFeature{}).Error; err != nil {
			return err
		}
		if len(features) == 0 {
			return nil
		}
		for i := range features {
			features[i].ID = 0
			features[i].ListingID = listingID
		}
		return tx.Create(&features).Error
	})
}

// UpsertVehicleDetails inserts or refreshes the one row per listing
func (r *listingRepository) UpsertVehicleDetails(details *domain.VehicleDetails) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"make", "model", "year", "mileage", "fuel_type", "transmission", "color",
		}),
	}).Create(details).Error
}

// UpsertRealEstateDetails inserts or refreshes the one row per listing
func (r *listingRepository) UpsertRealEstateDetails(details *domain.RealEstateDetails) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "listing_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"property_type", "rooms", "area_sqm", "floor", "total_floors",
			"year_built", "furnished", "heating",
		}),
	}).Create(details).Error
}

// AddImage appends an image row at the end of the listing's sort order
func (r *listingRepository) AddImage(image *domain.ListingImage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var maxOrder *int
		if err := tx.Model(&domain.ListingImage{}).
			Where("listing_id = ?", image.ListingID).
			Select("MAX(sort_order)").
			Scan(&maxOrder).Error; err != nil {
			return err
		}
		if maxOrder != nil {
			image.SortOrder = *maxOrder + 1
		}
		return tx.Create(image).Error
	})
}

// FindImageByID returns an image row, (nil, nil) when absent
func (r *listingRepository) FindImageByID(id uint64) (*domain.ListingImage, error) {
	var image domain.ListingImage
	err := r.db.Where("id = ?", id).First(&image).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &image, nil
}

// DeleteImage removes an image row
func (r *listingRepository) DeleteImage(id uint64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.ListingImage{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithDependents removes the listing and everything hanging off it
// in one transaction: favorites, conversations with their messages, child
// rows, then the listing itself.
func (r *listingRepository) DeleteWithDependents(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN (?)",
			tx.Model(&domain.Conversation{}).Select("id").Where("listing_id = ?", id),
		).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Conversation{}).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{
			&domain.ListingImage{},
			&domain.ListingAttribute{},
			&domain.ListingFeature{},
			&domain.VehicleDetails{},
			&domain.RealEstateDetails{},
		} {
			if err := tx.Where("listing_id = ?", id).Delete(child).Error; err != nil {
				return err
			}
		}

		result := tx.Where("id = ?", id).Delete(&domain.Listing{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func sortImages(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC")
}
