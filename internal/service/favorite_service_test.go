package service

import (
	"testing"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newFavoriteTestService(db *gorm.DB) FavoriteService {
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewFavoriteService(
		repository.NewFavoriteRepository(db),
		repository.NewListingRepository(db),
		notificationSvc,
	)
}

func TestFavoriteAdd_NotifiesOwnerOnce(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	listing := createTestListing(t, db, seller.ID, "Bike")
	svc := newFavoriteTestService(db)

	first, err := svc.Add(buyer.ID, listing.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Bike", first.Listing.Title)

	// Adding again is a no-op returning the same favorite
	second, err := svc.Add(buyer.ID, listing.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&domain.Favorite{}).Count(&count)
	assert.Equal(t, int64(1), count)

	// Only the first insert told the owner
	var notifications []domain.Notification
	assert.NoError(t, db.Where("user_id = ?", seller.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeListingInterest, notifications[0].Type)
	assert.Equal(t, listing.ID, *notifications[0].RelatedID)
}

func TestFavoriteAdd_OwnListingRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	listing := createTestListing(t, db, seller.ID, "Car")
	svc := newFavoriteTestService(db)

	result, err := svc.Add(seller.ID, listing.ID)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestFavoriteAdd_MissingListing(t *testing.T) {
	db := setupServiceTestDB(t)
	buyer := createTestUser(t, db, "buyer")
	svc := newFavoriteTestService(db)

	result, err := svc.Add(buyer.ID, 9999)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
	assert.Nil(t, result)
}

func TestFavoriteRemove_MissingIsNoop(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	listing := createTestListing(t, db, seller.ID, "Desk")
	svc := newFavoriteTestService(db)

	// Removing a bookmark that never existed succeeds
	assert.NoError(t, svc.Remove(buyer.ID, listing.ID))

	_, err := svc.Add(buyer.ID, listing.ID)
	assert.NoError(t, err)
	assert.NoError(t, svc.Remove(buyer.ID, listing.ID))

	var count int64
	db.Model(&domain.Favorite{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestFavoriteGetList_PreviewsListings(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	bike := createTestListing(t, db, seller.ID, "Bike")
	car := createTestListing(t, db, seller.ID, "Car")
	svc := newFavoriteTestService(db)

	_, err := svc.Add(buyer.ID, bike.ID)
	assert.NoError(t, err)
	_, err = svc.Add(buyer.ID, car.ID)
	assert.NoError(t, err)

	favorites, meta, err := svc.GetList(buyer.ID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Len(t, favorites, 2)
	for _, f := range favorites {
		assert.NotNil(t, f.Listing)
		assert.NotEmpty(t, f.Listing.Title)
	}

	// Another user's list stays empty
	favorites, meta, err = svc.GetList(seller.ID, 1, 20)
	assert.NoError(t, err)
	assert.Empty(t, favorites)
	assert.Equal(t, int64(0), meta.Total)
}
