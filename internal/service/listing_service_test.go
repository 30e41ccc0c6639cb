package service

import (
	"context"
	"testing"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func newListingTestService(db *gorm.DB) ListingService {
	notificationSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewListingService(
		repository.NewListingRepository(db),
		repository.NewFavoriteRepository(db),
		notificationSvc,
		nil, // cache
		nil, // insights
		nil, // storage
	)
}

func addTestFavorite(t *testing.T, db *gorm.DB, userID, listingID uint64) {
	t.Helper()
	if err := db.Create(&domain.Favorite{UserID: userID, ListingID: listingID}).Error; err != nil {
		t.Fatalf("failed to create favorite: %v", err)
	}
}

func TestListingCreate_DefaultsAndChildren(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	svc := newListingTestService(db)

	result, err := svc.Create(seller.ID, &domain.CreateListingRequest{
		Title:       "2014 Golf",
		Description: "runs fine",
		Price:       4500,
		Category:    domain.ListingCategoryVehicle,
		Action:      domain.ListingActionSell,
		Attributes:  []domain.AttributeInput{{Name: "color", Value: "blue"}},
		Features:    []domain.FeatureInput{{Name: "heated seats", Enabled: true}},
		VehicleDetails: &domain.VehicleDetailsInput{
			Make: "VW", Model: "Golf", Year: 2014, Mileage: 120000,
		},
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.ListingStatusDraft, result.Status)
	assert.Len(t, result.Attributes, 1)
	assert.Len(t, result.Features, 1)
	assert.Equal(t, "VW", result.VehicleDetails.Make)

	var vehicleCount int64
	db.Model(&domain.VehicleDetails{}).Where("listing_id = ?", result.ID).Count(&vehicleCount)
	assert.Equal(t, int64(1), vehicleCount)

	// The owner hears about their own new listing
	var notifications []domain.Notification
	assert.NoError(t, db.Where("user_id = ?", seller.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeListingCreated, notifications[0].Type)
}

func TestListingCreate_Validation(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	svc := newListingTestService(db)

	base := domain.CreateListingRequest{
		Title:    "Flat",
		Price:    900,
		Category: domain.ListingCategoryRealEstate,
		Action:   domain.ListingActionRent,
	}

	cases := []struct {
		name   string
		mutate func(*domain.CreateListingRequest)
	}{
		{"bad category", func(r *domain.CreateListingRequest) { r.Category = "BOATS" }},
		{"bad action", func(r *domain.CreateListingRequest) { r.Action = "TRADE" }},
		{"bad status", func(r *domain.CreateListingRequest) { r.Status = "PENDING" }},
		{"negative price", func(r *domain.CreateListingRequest) { r.Price = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			result, err := svc.Create(seller.ID, &req)
			assert.ErrorIs(t, err, common.ErrInvalidInput)
			assert.Nil(t, result)
		})
	}

	var count int64
	db.Model(&domain.Listing{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestListingGet_CountsNonOwnerViews(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	viewer := createTestUser(t, db, "viewer")
	listing := createTestListing(t, db, seller.ID, "Boat trailer")
	svc := newListingTestService(db)
	ctx := context.Background()

	result, err := svc.Get(ctx, listing.ID, viewer.ID, "ip-hash")
	assert.NoError(t, err)
	assert.Equal(t, "Boat trailer", result.Title)

	var stored domain.Listing
	assert.NoError(t, db.First(&stored, listing.ID).Error)
	assert.Equal(t, uint64(1), stored.ViewCount)

	// Anonymous viewers count too
	_, err = svc.Get(ctx, listing.ID, 0, "ip-hash-2")
	assert.NoError(t, err)

	// The owner checking their own listing does not
	_, err = svc.Get(ctx, listing.ID, seller.ID, "ip-hash-3")
	assert.NoError(t, err)

	assert.NoError(t, db.First(&stored, listing.ID).Error)
	assert.Equal(t, uint64(2), stored.ViewCount)
}

func TestListingGet_NotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := newListingTestService(db)

	result, err := svc.Get(context.Background(), 9999, 0, "")
	assert.ErrorIs(t, err, common.ErrListingNotFound)
	assert.Nil(t, result)
}

func TestListingGetPublicList_ActiveOnly(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	svc := newListingTestService(db)

	active := createTestListing(t, db, seller.ID, "Active one")
	draft := createTestListing(t, db, seller.ID, "Draft one")
	sold := createTestListing(t, db, seller.ID, "Sold one")
	assert.NoError(t, db.Model(draft).Update("status", domain.ListingStatusDraft).Error)
	assert.NoError(t, db.Model(sold).Update("status", domain.ListingStatusSold).Error)

	page, err := svc.GetPublicList(context.Background(), 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.Len(t, page.Listings, 1)
	assert.Equal(t, active.ID, page.Listings[0].ID)
}

func TestListingGetOwn_AllStatuses(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	other := createTestUser(t, db, "other")
	svc := newListingTestService(db)

	createTestListing(t, db, seller.ID, "Mine active")
	draft := createTestListing(t, db, seller.ID, "Mine draft")
	assert.NoError(t, db.Model(draft).Update("status", domain.ListingStatusDraft).Error)
	createTestListing(t, db, other.ID, "Not mine")

	listings, meta, err := svc.GetOwn(seller.ID, 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, int64(2), meta.Total)
	assert.Len(t, listings, 2)
}

func TestListingUpdate_OwnerOnly(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	intruder := createTestUser(t, db, "intruder")
	listing := createTestListing(t, db, seller.ID, "Moped")
	svc := newListingTestService(db)
	ctx := context.Background()

	title := "Moped, price drop"
	_, err := svc.Update(ctx, listing.ID, intruder.ID, &domain.UpdateListingRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.Update(ctx, 9999, seller.ID, &domain.UpdateListingRequest{Title: &title})
	assert.ErrorIs(t, err, common.ErrListingNotFound)

	result, err := svc.Update(ctx, listing.ID, seller.ID, &domain.UpdateListingRequest{Title: &title})
	assert.NoError(t, err)
	assert.Equal(t, "Moped, price drop", result.Title)
}

func TestListingUpdate_PriceChangeNotifiesFavoriters(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	listing := createTestListing(t, db, seller.ID, "Camper")
	addTestFavorite(t, db, fan.ID, listing.ID)
	svc := newListingTestService(db)
	ctx := context.Background()

	newPrice := 850.0
	result, err := svc.Update(ctx, listing.ID, seller.ID, &domain.UpdateListingRequest{Price: &newPrice})
	assert.NoError(t, err)
	assert.Equal(t, 850.0, result.Price)

	var notifications []domain.Notification
	assert.NoError(t, db.Where("user_id = ?", fan.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypePriceUpdate, notifications[0].Type)
	assert.Equal(t, listing.ID, *notifications[0].RelatedID)

	// Re-submitting the same price fans out nothing new
	_, err = svc.Update(ctx, listing.ID, seller.ID, &domain.UpdateListingRequest{Price: &newPrice})
	assert.NoError(t, err)

	assert.NoError(t, db.Where("user_id = ?", fan.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestListingUpdate_NegativePriceRejected(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	listing := createTestListing(t, db, seller.ID, "Trailer")
	svc := newListingTestService(db)

	bad := -10.0
	result, err := svc.Update(context.Background(), listing.ID, seller.ID, &domain.UpdateListingRequest{Price: &bad})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestListingUpdate_ReplacesAttributes(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	svc := newListingTestService(db)

	created, err := svc.Create(seller.ID, &domain.CreateListingRequest{
		Title:    "Scooter",
		Price:    300,
		Category: domain.ListingCategoryVehicle,
		Action:   domain.ListingActionSell,
		Attributes: []domain.AttributeInput{
			{Name: "color", Value: "red"},
			{Name: "condition", Value: "used"},
		},
	})
	assert.NoError(t, err)

	result, err := svc.Update(context.Background(), created.ID, seller.ID, &domain.UpdateListingRequest{
		Attributes: []domain.AttributeInput{{Name: "color", Value: "black"}},
	})
	assert.NoError(t, err)
	assert.Len(t, result.Attributes, 1)
	assert.Equal(t, "black", result.Attributes[0].Value)

	var count int64
	db.Model(&domain.ListingAttribute{}).Where("listing_id = ?", created.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestListingUpdateStatus_SoldNotifiesFavoritersOnce(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	fan := createTestUser(t, db, "fan")
	listing := createTestListing(t, db, seller.ID, "Kayak")
	addTestFavorite(t, db, fan.ID, listing.ID)
	svc := newListingTestService(db)
	ctx := context.Background()

	result, err := svc.UpdateStatus(ctx, listing.ID, seller.ID, domain.ListingStatusSold)
	assert.NoError(t, err)
	assert.Equal(t, domain.ListingStatusSold, result.Status)

	var notifications []domain.Notification
	assert.NoError(t, db.Where("user_id = ?", fan.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
	assert.Equal(t, domain.NotificationTypeListingSold, notifications[0].Type)

	// Setting SOLD again is not a transition, nothing new goes out
	_, err = svc.UpdateStatus(ctx, listing.ID, seller.ID, domain.ListingStatusSold)
	assert.NoError(t, err)
	assert.NoError(t, db.Where("user_id = ?", fan.ID).Find(&notifications).Error)
	assert.Len(t, notifications, 1)
}

func TestListingUpdateStatus_Validation(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	intruder := createTestUser(t, db, "intruder")
	listing := createTestListing(t, db, seller.ID, "Tent")
	svc := newListingTestService(db)
	ctx := context.Background()

	_, err := svc.UpdateStatus(ctx, listing.ID, seller.ID, "GONE")
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, err = svc.UpdateStatus(ctx, listing.ID, intruder.ID, domain.ListingStatusSold)
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.UpdateStatus(ctx, 9999, seller.ID, domain.ListingStatusSold)
	assert.ErrorIs(t, err, common.ErrListingNotFound)
}

func TestListingDelete_RemovesDependents(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	buyer := createTestUser(t, db, "buyer")
	listing := createTestListing(t, db, seller.ID, "Snowboard")
	addTestFavorite(t, db, buyer.ID, listing.ID)

	// An open conversation with messages hangs off the listing
	messagingSvc := newMessagingTestService(db)
	_, err := messagingSvc.SendMessage(buyer.ID, &domain.SendMessageRequest{
		RecipientID: seller.ID, ListingID: listing.ID, Content: "still there?",
	})
	assert.NoError(t, err)

	svc := newListingTestService(db)
	assert.NoError(t, svc.Delete(context.Background(), listing.ID, seller.ID))

	for _, model := range []interface{}{
		&domain.Listing{}, &domain.Favorite{}, &domain.Conversation{}, &domain.Message{},
	} {
		var count int64
		db.Model(model).Count(&count)
		assert.Equal(t, int64(0), count)
	}
}

func TestListingDelete_OwnerOnly(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	intruder := createTestUser(t, db, "intruder")
	listing := createTestListing(t, db, seller.ID, "Grill")
	svc := newListingTestService(db)

	assert.ErrorIs(t, svc.Delete(context.Background(), listing.ID, intruder.ID), common.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(context.Background(), 9999, seller.ID), common.ErrListingNotFound)
}

func TestListingStats_OwnerOnly(t *testing.T) {
	db := setupServiceTestDB(t)
	seller := createTestUser(t, db, "seller")
	viewer := createTestUser(t, db, "viewer")
	listing := createTestListing(t, db, seller.ID, "Rowboat")
	svc := newListingTestService(db)
	ctx := context.Background()

	_, err := svc.Get(ctx, listing.ID, viewer.ID, "ip-hash")
	assert.NoError(t, err)

	stats, err := svc.Stats(ctx, listing.ID, seller.ID)
	assert.NoError(t, err)
	assert.Equal(t, listing.ID, stats.ListingID)
	assert.Equal(t, uint64(1), stats.ViewCount)

	_, err = svc.Stats(ctx, listing.ID, viewer.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}
