package repository

import (
	"errors"

	"github.com/lokalo/lokalo-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository conversation data access interface
type ConversationRepository interface {
	FindByID(id uint64) (*domain.Conversation, error)
	FindByPair(listingID, userA, userB uint64) (*domain.Conversation, error)
	CreateIfAbsent(conv *domain.Conversation) (*domain.Conversation, error)
	ListByUser(userID uint64, offset, limit int) ([]domain.Conversation, int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

// FindByID returns a conversation with participants and listing preloaded,
// (nil, nil) when absent
func (r *conversationRepository) FindByID(id uint64) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.db.
		Preload("Listing").
		Preload("Listing.Images", sortImages).
		Preload("ParticipantLow").
		Preload("ParticipantHigh").
		Where("id = ?", id).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// FindByPair returns the conversation between two users about one listing,
// (nil, nil) when absent. Participant order does not matter.
func (r *conversationRepository) FindByPair(listingID, userA, userB uint64) (*domain.Conversation, error) {
	low, high := domain.NormalizePair(userA, userB)

	var conv domain.Conversation
	err := r.db.
		Where("listing_id = ? AND participant_low_id = ? AND participant_high_id = ?", listingID, low, high).
		First(&conv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conv, nil
}

// CreateIfAbsent inserts the conversation unless the (listing, pair) row
// already exists. The unique index decides the winner under concurrency;
// losers read back the surviving row, so both callers end up with the
// same conversation.
func (r *conversationRepository) CreateIfAbsent(conv *domain.Conversation) (*domain.Conversation, error) {
	result := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "listing_id"},
			{Name: "participant_low_id"},
			{Name: "participant_high_id"},
		},
		DoNothing: true,
	}).Create(conv)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected > 0 {
		return conv, nil
	}

	existing, err := r.FindByPair(conv.ListingID, conv.ParticipantLowID, conv.ParticipantHighID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return existing, nil
}

// ListByUser returns the user's conversations, most recently active first.
// Rows without any message yet sort last.
func (r *conversationRepository) ListByUser(userID uint64, offset, limit int) ([]domain.Conversation, int64, error) {
	var convs []domain.Conversation
	var total int64

	query := r.db.Model(&domain.Conversation{}).
		Where("participant_low_id = ? OR participant_high_id = ?", userID, userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Listing").
		Preload("Listing.Images", sortImages).
		Preload("ParticipantLow").
		Preload("ParticipantHigh").
		Order("last_message_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&convs).Error
	if err != nil {
		return nil, 0, err
	}
	return convs, total, nil
}
