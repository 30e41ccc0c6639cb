package domain

import "time"

// Conversation represents a message thread between two users scoped to
// one listing. The participant pair is stored normalized (low id first)
// so the composite unique index can enforce at most one conversation per
// (pair, listing) at the schema level.
type Conversation struct {
	ID                uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ListingID         uint64     `gorm:"column:listing_id;uniqueIndex:uq_conversations_pair_listing,priority:1" json:"listing_id"`
	ParticipantLowID  uint64     `gorm:"column:participant_low_id;uniqueIndex:uq_conversations_pair_listing,priority:2;index" json:"participant_low_id"`
	ParticipantHighID uint64     `gorm:"column:participant_high_id;uniqueIndex:uq_conversations_pair_listing,priority:3;index" json:"participant_high_id"`
	LastMessage       *string    `gorm:"column:last_message;type:varchar(255)" json:"last_message,omitempty"`
	LastMessageAt     *time.Time `gorm:"column:last_message_at;index" json:"last_message_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Listing         *Listing  `gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE" json:"-"`
	ParticipantLow  *User     `gorm:"foreignKey:ParticipantLowID;constraint:OnDelete:CASCADE" json:"-"`
	ParticipantHigh *User     `gorm:"foreignKey:ParticipantHighID;constraint:OnDelete:CASCADE" json:"-"`
	Messages        []Message `gorm:"foreignKey:ConversationID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Conversation) TableName() string { return "conversations" }

// NormalizePair orders two user ids so (a,b) and (b,a) map to the same
// participant key.
func NormalizePair(a, b uint64) (low, high uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// HasParticipant reports whether userID is a member of the pair
func (c *Conversation) HasParticipant(userID uint64) bool {
	return c.ParticipantLowID == userID || c.ParticipantHighID == userID
}

// OtherParticipantID returns the pair member that is not userID
func (c *Conversation) OtherParticipantID(userID uint64) uint64 {
	if c.ParticipantLowID == userID {
		return c.ParticipantHighID
	}
	return c.ParticipantLowID
}

// otherParticipant returns the loaded User that is not userID, if preloaded
func (c *Conversation) otherParticipant(userID uint64) *User {
	if c.ParticipantLowID == userID {
		return c.ParticipantHigh
	}
	return c.ParticipantLow
}

// ConversationResponse represents a conversation from one viewer's side
type ConversationResponse struct {
	ID            uint64          `json:"id"`
	Listing       *ListingSummary `json:"listing,omitempty"`
	Participant   *PublicProfile  `json:"participant,omitempty"`
	LastMessage   *string         `json:"last_message,omitempty"`
	LastMessageAt *time.Time      `json:"last_message_at,omitempty"`
	UnreadCount   int64           `json:"unread_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToResponse converts Conversation to ConversationResponse as seen by
// viewerID; unread is the viewer's unread message count in this thread.
func (c *Conversation) ToResponse(viewerID uint64, unread int64) *ConversationResponse {
	resp := &ConversationResponse{
		ID:            c.ID,
		LastMessage:   c.LastMessage,
		LastMessageAt: c.LastMessageAt,
		UnreadCount:   unread,
		CreatedAt:     c.CreatedAt,
	}
	if c.Listing != nil {
		resp.Listing = c.Listing.ToSummary()
	}
	if other := c.otherParticipant(viewerID); other != nil {
		resp.Participant = other.ToPublicProfile()
	}
	return resp
}
