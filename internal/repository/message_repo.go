package repository

import (
	"errors"

	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
)

// MessageRepository message data access interface
type MessageRepository interface {
	CreateWithSummary(message *domain.Message) error
	FindByID(id uint64) (*domain.Message, error)
	ListByConversation(conversationID uint64, offset, limit int) ([]domain.Message, int64, error)
	MarkConversationRead(conversationID, recipientID uint64) error
	Delete(id uint64) error
	CountUnreadByUser(userID uint64) (int64, error)
	CountUnreadByConversation(conversationID, userID uint64) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// CreateWithSummary inserts the message and refreshes the conversation's
// denormalized last-message columns in the same transaction, so the
// summary never points at a message that was rolled back.
func (r *messageRepository) CreateWithSummary(message *domain.Message) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(message).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Conversation{}).
			Where("id = ?", message.ConversationID).
			Updates(map[string]interface{}{
				"last_message":    message.Preview(),
				"last_message_at": message.CreatedAt,
			}).Error
	})
}

// FindByID returns a message by ID, (nil, nil) when absent
func (r *messageRepository) FindByID(id uint64) (*domain.Message, error) {
	var message domain.Message
	err := r.db.Where("id = ?", id).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &message, nil
}

// ListByConversation returns one page of messages, newest first
func (r *messageRepository) ListByConversation(conversationID uint64, offset, limit int) ([]domain.Message, int64, error) {
	var messages []domain.Message
	var total int64

	query := r.db.Model(&domain.Message{}).Where("conversation_id = ?", conversationID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Sender").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

// MarkConversationRead flags every unread message addressed to the
// recipient in this conversation. Running it again is a no-op.
func (r *messageRepository) MarkConversationRead(conversationID, recipientID uint64) error {
	return r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, recipientID, false).
		Update("is_read", true).Error
}

// Delete removes a message by ID
func (r *messageRepository) Delete(id uint64) error {
	result := r.db.Where("id = ?", id).Delete(&domain.Message{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUnreadByUser counts unread messages across all of a user's conversations
func (r *messageRepository) CountUnreadByUser(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// CountUnreadByConversation counts unread messages addressed to one user
// within one conversation
func (r *messageRepository) CountUnreadByConversation(conversationID, userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND is_read = ?", conversationID, userID, false).
		Count(&count).Error
	return count, err
}
