package domain

import "time"

// Notification types
const (
	NotificationTypeNewMessage      = "NEW_MESSAGE"
	NotificationTypeListingInterest = "LISTING_INTEREST"
	NotificationTypePriceUpdate     = "PRICE_UPDATE"
	NotificationTypeListingSold     = "LISTING_SOLD"
	NotificationTypeSystemNotice    = "SYSTEM_NOTICE"
	NotificationTypeListingCreated  = "LISTING_CREATED"
)

var notificationTypes = map[string]bool{
	NotificationTypeNewMessage:      true,
	NotificationTypeListingInterest: true,
	NotificationTypePriceUpdate:     true,
	NotificationTypeListingSold:     true,
	NotificationTypeSystemNotice:    true,
	NotificationTypeListingCreated:  true,
}

// ValidNotificationType reports whether t is a known notification type
func ValidNotificationType(t string) bool { return notificationTypes[t] }

// Notification represents a durable per-user alert.
// RelatedID is an opaque reference (listing, message, ...) with no foreign
// key; RelatedType is an advisory kind tag for clients.
type Notification struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"column:user_id;index" json:"user_id"`
	Type        string    `gorm:"column:type;type:varchar(40)" json:"type"`
	Message     string    `gorm:"column:message;type:varchar(500)" json:"message"`
	RelatedID   *uint64   `gorm:"column:related_id" json:"related_id,omitempty"`
	RelatedType *string   `gorm:"column:related_type;type:varchar(40)" json:"related_type,omitempty"`
	IsRead      bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Notification) TableName() string { return "notifications" }

// NotificationResponse represents a notification in API responses and as
// the realtime event payload.
type NotificationResponse struct {
	ID          uint64    `json:"id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	RelatedID   *uint64   `json:"related_id,omitempty"`
	RelatedType *string   `json:"related_type,omitempty"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToResponse converts Notification to NotificationResponse
func (n *Notification) ToResponse() *NotificationResponse {
	return &NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Message:     n.Message,
		RelatedID:   n.RelatedID,
		RelatedType: n.RelatedType,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}
