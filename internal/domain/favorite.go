package domain

import "time"

// Favorite represents a user's bookmark of a listing.
// One row per (user, listing), enforced by the unique index.
type Favorite struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"column:user_id;uniqueIndex:uq_favorites_user_listing,priority:1" json:"user_id"`
	ListingID uint64    `gorm:"column:listing_id;uniqueIndex:uq_favorites_user_listing,priority:2;index" json:"listing_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
}

func (Favorite) TableName() string { return "favorites" }

// FavoriteResponse represents a favorite with its listing preview
type FavoriteResponse struct {
	ID        uint64          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Listing   *ListingSummary `json:"listing,omitempty"`
}

// ToResponse converts Favorite to FavoriteResponse
func (f *Favorite) ToResponse() *FavoriteResponse {
	resp := &FavoriteResponse{
		ID:        f.ID,
		CreatedAt: f.CreatedAt,
	}
	if f.Listing != nil {
		resp.Listing = f.Listing.ToSummary()
	}
	return resp
}
