package domain

import "time"

// Message content policy
const (
	// MaxMessageLength caps message content length
	MaxMessageLength = 2000
	// MessagePreviewLength caps the denormalized conversation preview
	MessagePreviewLength = 120
)

// Message represents one message inside a conversation
type Message struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ConversationID uint64    `gorm:"column:conversation_id;index" json:"conversation_id"`
	SenderID       uint64    `gorm:"column:sender_id;index" json:"sender_id"`
	RecipientID    uint64    `gorm:"column:recipient_id;index" json:"recipient_id"`
	Content        string    `gorm:"column:content;type:text;not null" json:"content"`
	IsRead         bool      `gorm:"column:is_read;default:false" json:"is_read"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`

	Sender    *User `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"-"`
	Recipient *User `gorm:"foreignKey:RecipientID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Message) TableName() string { return "messages" }

// Preview returns content truncated for the conversation summary
func (m *Message) Preview() string {
	runes := []rune(m.Content)
	if len(runes) <= MessagePreviewLength {
		return m.Content
	}
	return string(runes[:MessagePreviewLength])
}

// SendMessageRequest represents a send message request
type SendMessageRequest struct {
	RecipientID uint64 `json:"recipient_id" binding:"required"`
	ListingID   uint64 `json:"listing_id" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

// MessageResponse represents a message in API responses
type MessageResponse struct {
	ID             uint64         `json:"id"`
	ConversationID uint64         `json:"conversation_id"`
	SenderID       uint64         `json:"sender_id"`
	RecipientID    uint64         `json:"recipient_id"`
	Content        string         `json:"content"`
	IsRead         bool           `json:"is_read"`
	CreatedAt      time.Time      `json:"created_at"`
	Sender         *PublicProfile `json:"sender,omitempty"`
}

// ToResponse converts Message to MessageResponse; the sender profile is
// attached when preloaded.
func (m *Message) ToResponse() *MessageResponse {
	resp := &MessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		RecipientID:    m.RecipientID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
	if m.Sender != nil {
		resp.Sender = m.Sender.ToPublicProfile()
	}
	return resp
}

// SendMessageResponse bundles the created message with its conversation,
// which may have been created by the same call.
type SendMessageResponse struct {
	Message      *MessageResponse      `json:"message"`
	Conversation *ConversationResponse `json:"conversation"`
}
