package migration

import (
	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
)

// Run creates or updates the schema. Tables are migrated parents first so
// that foreign keys resolve.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Listing{},
		&domain.ListingImage{},
		&domain.ListingAttribute{},
		&domain.ListingFeature{},
		&domain.VehicleDetails{},
		&domain.RealEstateDetails{},
		&domain.Favorite{},
		&domain.Conversation{},
		&domain.Message{},
		&domain.Notification{},
	)
}
