package domain

import "time"

// Listing statuses; stored as free text, validated in the service layer
// rather than by the database.
const (
	ListingStatusDraft    = "DRAFT"
	ListingStatusActive   = "ACTIVE"
	ListingStatusSold     = "SOLD"
	ListingStatusRented   = "RENTED"
	ListingStatusExpired  = "EXPIRED"
	ListingStatusArchived = "ARCHIVED"
)

// Listing actions
const (
	ListingActionSell = "SELL"
	ListingActionRent = "RENT"
)

// Listing categories
const (
	ListingCategoryVehicle    = "VEHICLE"
	ListingCategoryRealEstate = "REAL_ESTATE"
)

var listingStatuses = map[string]bool{
	ListingStatusDraft:    true,
	ListingStatusActive:   true,
	ListingStatusSold:     true,
	ListingStatusRented:   true,
	ListingStatusExpired:  true,
	ListingStatusArchived: true,
}

// ValidListingStatus reports whether s is a known listing status
func ValidListingStatus(s string) bool { return listingStatuses[s] }

// ValidListingAction reports whether a is a known listing action
func ValidListingAction(a string) bool {
	return a == ListingActionSell || a == ListingActionRent
}

// ValidListingCategory reports whether c is a known listing category
func ValidListingCategory(c string) bool {
	return c == ListingCategoryVehicle || c == ListingCategoryRealEstate
}

// Listing represents a sellable or rentable item
type Listing struct {
	ID          uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      uint64     `gorm:"column:user_id;index" json:"user_id"`
	Title       string     `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description"`
	Price       float64    `gorm:"column:price;type:decimal(12,2);default:0" json:"price"`
	Category    string     `gorm:"column:category;type:varchar(20);index" json:"category"`
	SubCategory string     `gorm:"column:sub_category;type:varchar(50)" json:"sub_category,omitempty"`
	Location    string     `gorm:"column:location;type:varchar(255)" json:"location,omitempty"`
	Status      string     `gorm:"column:status;type:varchar(20);index;default:'DRAFT'" json:"status"`
	Action      string     `gorm:"column:action;type:varchar(10)" json:"action"`
	ViewCount   uint64     `gorm:"column:view_count;default:0" json:"view_count"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	User              *User              `gorm:"foreignKey:UserID" json:"-"`
	Images            []ListingImage     `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Attributes        []ListingAttribute `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
	Features          []ListingFeature   `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"features,omitempty"`
	VehicleDetails    *VehicleDetails    `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"vehicle_details,omitempty"`
	RealEstateDetails *RealEstateDetails `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"real_estate_details,omitempty"`
}

func (Listing) TableName() string { return "listings" }

// ListingImage represents an ordered listing photo
type ListingImage struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID  uint64    `gorm:"column:listing_id;index" json:"listing_id"`
	URL        string    `gorm:"column:url;type:varchar(500)" json:"url"`
	StorageKey string    `gorm:"column:storage_key;type:varchar(500)" json:"-"`
	SortOrder  int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ListingImage) TableName() string { return "listing_images" }

// ListingAttribute represents a name/value pair on a listing
type ListingAttribute struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID uint64 `gorm:"column:listing_id;index" json:"listing_id"`
	Name      string `gorm:"column:name;type:varchar(100)" json:"name"`
	Value     string `gorm:"column:value;type:varchar(255)" json:"value"`
}

func (ListingAttribute) TableName() string { return "listing_attributes" }

// ListingFeature represents a name/bool pair on a listing
type ListingFeature struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID uint64 `gorm:"column:listing_id;index" json:"listing_id"`
	Name      string `gorm:"column:name;type:varchar(100)" json:"name"`
	Enabled   bool   `gorm:"column:enabled;default:true" json:"enabled"`
}

func (ListingFeature) TableName() string { return "listing_features" }

// VehicleDetails one-to-one sub-record for vehicle listings
type VehicleDetails struct {
	ID           uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID    uint64 `gorm:"column:listing_id;uniqueIndex" json:"listing_id"`
	Make         string `gorm:"column:make;type:varchar(50)" json:"make"`
	Model        string `gorm:"column:model;type:varchar(50)" json:"model"`
	Year         int    `gorm:"column:year" json:"year"`
	Mileage      int    `gorm:"column:mileage" json:"mileage"`
	FuelType     string `gorm:"column:fuel_type;type:varchar(30)" json:"fuel_type,omitempty"`
	Transmission string `gorm:"column:transmission;type:varchar(30)" json:"transmission,omitempty"`
	Color        string `gorm:"column:color;type:varchar(30)" json:"color,omitempty"`
}

func (VehicleDetails) TableName() string { return "listing_vehicle_details" }

// RealEstateDetails one-to-one sub-record for real estate listings
type RealEstateDetails struct {
	ID           uint64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID    uint64  `gorm:"column:listing_id;uniqueIndex" json:"listing_id"`
	PropertyType string  `gorm:"column:property_type;type:varchar(30)" json:"property_type"`
	Rooms        int     `gorm:"column:rooms" json:"rooms"`
	AreaSqm      float64 `gorm:"column:area_sqm;type:decimal(10,2)" json:"area_sqm"`
	Floor        *int    `gorm:"column:floor" json:"floor,omitempty"`
	TotalFloors  *int    `gorm:"column:total_floors" json:"total_floors,omitempty"`
	YearBuilt    *int    `gorm:"column:year_built" json:"year_built,omitempty"`
	Furnished    bool    `gorm:"column:furnished;default:false" json:"furnished"`
	Heating      string  `gorm:"column:heating;type:varchar(30)" json:"heating,omitempty"`
}

func (RealEstateDetails) TableName() string { return "listing_real_estate_details" }

// ListingResponse represents a full listing in API responses
type ListingResponse struct {
	ID                uint64             `json:"id"`
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	Price             float64            `json:"price"`
	Category          string             `json:"category"`
	SubCategory       string             `json:"sub_category,omitempty"`
	Location          string             `json:"location,omitempty"`
	Status            string             `json:"status"`
	Action            string             `json:"action"`
	ViewCount         uint64             `json:"view_count"`
	ExpiresAt         *time.Time         `json:"expires_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
	Owner             *PublicProfile     `json:"owner,omitempty"`
	Images            []ListingImage     `json:"images"`
	Attributes        []ListingAttribute `json:"attributes"`
	Features          []ListingFeature   `json:"features"`
	VehicleDetails    *VehicleDetails    `json:"vehicle_details,omitempty"`
	RealEstateDetails *RealEstateDetails `json:"real_estate_details,omitempty"`
}

// ToResponse converts Listing to ListingResponse
func (l *Listing) ToResponse() *ListingResponse {
	resp := &ListingResponse{
		ID:                l.ID,
		Title:             l.Title,
		Description:       l.Description,
		Price:             l.Price,
		Category:          l.Category,
		SubCategory:       l.SubCategory,
		Location:          l.Location,
		Status:            l.Status,
		Action:            l.Action,
		ViewCount:         l.ViewCount,
		ExpiresAt:         l.ExpiresAt,
		CreatedAt:         l.CreatedAt,
		UpdatedAt:         l.UpdatedAt,
		Images:            l.Images,
		Attributes:        l.Attributes,
		Features:          l.Features,
		VehicleDetails:    l.VehicleDetails,
		RealEstateDetails: l.RealEstateDetails,
	}
	if l.User != nil {
		resp.Owner = l.User.ToPublicProfile()
	}
	return resp
}

// ListingSummary represents a listing in list views
type ListingSummary struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	Location  string    `json:"location,omitempty"`
	Status    string    `json:"status"`
	Action    string    `json:"action"`
	ThumbURL  string    `json:"thumb_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToSummary converts Listing to ListingSummary; the first image (by sort
// order) supplies the thumbnail when loaded.
func (l *Listing) ToSummary() *ListingSummary {
	s := &ListingSummary{
		ID:        l.ID,
		Title:     l.Title,
		Price:     l.Price,
		Category:  l.Category,
		Location:  l.Location,
		Status:    l.Status,
		Action:    l.Action,
		CreatedAt: l.CreatedAt,
	}
	if len(l.Images) > 0 {
		s.ThumbURL = l.Images[0].URL
	}
	return s
}

// AttributeInput is one name/value pair in a listing payload
type AttributeInput struct {
	Name  string `json:"name" validate:"required,max=100"`
	Value string `json:"value" validate:"required,max=255"`
}

// FeatureInput is one feature flag in a listing payload
type FeatureInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Enabled bool   `json:"enabled"`
}

// VehicleDetailsInput is the vehicle section of a listing payload
type VehicleDetailsInput struct {
	Make         string `json:"make" validate:"required,max=80"`
	Model        string `json:"model" validate:"required,max=80"`
	Year         int    `json:"year" validate:"required,gte=1900"`
	Mileage      int    `json:"mileage" validate:"gte=0"`
	FuelType     string `json:"fuel_type"`
	Transmission string `json:"transmission"`
	Color        string `json:"color"`
}

// RealEstateDetailsInput is the real estate section of a listing payload
type RealEstateDetailsInput struct {
	PropertyType string  `json:"property_type" validate:"required,max=50"`
	Rooms        int     `json:"rooms" validate:"gte=0"`
	AreaSqm      float64 `json:"area_sqm" validate:"gte=0"`
	Floor        *int    `json:"floor"`
	TotalFloors  *int    `json:"total_floors"`
	YearBuilt    *int    `json:"year_built"`
	Furnished    bool    `json:"furnished"`
	Heating      string  `json:"heating"`
}

// CreateListingRequest is the request body for creating a listing
type CreateListingRequest struct {
	Title             string                  `json:"title" validate:"required,max=200"`
	Description       string                  `json:"description" validate:"required"`
	Price             float64                 `json:"price" validate:"gte=0"`
	Category          string                  `json:"category" validate:"required"`
	SubCategory       string                  `json:"sub_category"`
	Location          string                  `json:"location" validate:"required,max=255"`
	Action            string                  `json:"action" validate:"required"`
	Status            string                  `json:"status"`
	ExpiresAt         *time.Time              `json:"expires_at"`
	Attributes        []AttributeInput        `json:"attributes" validate:"omitempty,dive"`
	Features          []FeatureInput          `json:"features" validate:"omitempty,dive"`
	VehicleDetails    *VehicleDetailsInput    `json:"vehicle_details"`
	RealEstateDetails *RealEstateDetailsInput `json:"real_estate_details"`
}

// UpdateListingRequest is the request body for updating a listing.
// Nil fields are left untouched.
type UpdateListingRequest struct {
	Title             *string                 `json:"title" validate:"omitempty,max=200"`
	Description       *string                 `json:"description"`
	Price             *float64                `json:"price" validate:"omitempty,gte=0"`
	SubCategory       *string                 `json:"sub_category"`
	Location          *string                 `json:"location" validate:"omitempty,max=255"`
	ExpiresAt         *time.Time              `json:"expires_at"`
	Attributes        []AttributeInput        `json:"attributes" validate:"omitempty,dive"`
	Features          []FeatureInput          `json:"features" validate:"omitempty,dive"`
	VehicleDetails    *VehicleDetailsInput    `json:"vehicle_details"`
	RealEstateDetails *RealEstateDetailsInput `json:"real_estate_details"`
}

// UpdateListingStatusRequest is the request body for a status change
type UpdateListingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListingStatsResponse reports view counts for one listing
type ListingStatsResponse struct {
	ListingID     uint64 `json:"listing_id"`
	ViewCount     uint64 `json:"view_count"`
	TodayViews    uint64 `json:"today_views"`
	WeekViews     uint64 `json:"week_views"`
	TotalViews    uint64 `json:"total_views"`
	UniqueViewers uint64 `json:"unique_viewers"`
}
