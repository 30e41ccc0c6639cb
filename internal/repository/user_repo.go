package repository

import (
	"errors"
	"time"

	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository user data access interface
type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id uint64) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	FindByUsername(username string) (*domain.User, error)
	UpdateLastLogin(id uint64, at time.Time) error
	DeleteWithDependents(id uint64) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user
func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

// FindByID returns a user by ID, (nil, nil) when absent
func (r *userRepository) FindByID(id uint64) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns a user by email, (nil, nil) when absent
func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// FindByUsername returns a user by username, (nil, nil) when absent
func (r *userRepository) FindByUsername(username string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps the last login time
func (r *userRepository) UpdateLastLogin(id uint64, at time.Time) error {
	return r.db.Model(&domain.User{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// DeleteWithDependents removes the user's favorites and listings (with
// their children) before the user row itself, in one transaction. These
// two relations carry no database-level cascade.
func (r *userRepository) DeleteWithDependents(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}

		listingIDs := tx.Model(&domain.Listing{}).Select("id").Where("user_id = ?", id)

		// Other users' favorites of this user's listings
		if err := tx.Where("listing_id IN (?)", listingIDs).Delete(&domain.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("conversation_id IN (?)",
			tx.Model(&domain.Conversation{}).Select("id").Where("listing_id IN (?)", listingIDs),
		).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id IN (?)", listingIDs).Delete(&domain.Conversation{}).Error; err != nil {
			return err
		}
		for _, child := range []interface{}{
			&domain.ListingImage{},
			&domain.ListingAttribute{},
			&domain.ListingFeature{},
			&domain.VehicleDetails{},
			&domain.RealEstateDetails{},
		} {
			if err := tx.Where("listing_id IN (?)", listingIDs).Delete(child).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Listing{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
