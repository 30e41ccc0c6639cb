package service

import (
	"strings"

	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
)

// MessageService business logic for listing conversations
type MessageService interface {
	SendMessage(senderID uint64, req *domain.SendMessageRequest) (*domain.SendMessageResponse, error)
	GetConversations(userID uint64, page, limit int) ([]*domain.ConversationResponse, *common.Meta, error)
	GetMessages(conversationID, callerID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error)
	DeleteMessage(messageID, callerID uint64) error
	UnreadCount(userID uint64) (int64, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	listingRepo repository.ListingRepository
}

// NewMessageService creates a new MessageService
func NewMessageService(
	messageRepo repository.MessageRepository,
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	listingRepo repository.ListingRepository,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		convRepo:    convRepo,
		userRepo:    userRepo,
		listingRepo: listingRepo,
	}
}

// SendMessage delivers a message about a listing. The conversation for
// (participant pair, listing) is created on first contact; concurrent
// first sends collapse onto one row via the unique index. The message
// insert and the conversation summary update commit together.
func (s *messageService) SendMessage(senderID uint64, req *domain.SendMessageRequest) (*domain.SendMessageResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" || len([]rune(content)) > domain.MaxMessageLength {
		return nil, common.ErrInvalidInput
	}
	if senderID == req.RecipientID {
		return nil, common.ErrInvalidInput
	}

	recipient, err := s.userRepo.FindByID(req.RecipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, common.ErrUserNotFound
	}

	listing, err := s.listingRepo.FindByID(req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, common.ErrListingNotFound
	}

	conv, err := s.convRepo.FindByPair(req.ListingID, senderID, req.RecipientID)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		low, high := domain.NormalizePair(senderID, req.RecipientID)
		conv, err = s.convRepo.CreateIfAbsent(&domain.Conversation{
			ListingID:         req.ListingID,
			ParticipantLowID:  low,
			ParticipantHighID: high,
		})
		if err != nil {
			return nil, err
		}
	}

	message := &domain.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		RecipientID:    req.RecipientID,
		Content:        content,
	}
	if err := s.messageRepo.CreateWithSummary(message); err != nil {
		return nil, err
	}

	sender, err := s.userRepo.FindByID(senderID)
	if err == nil && sender != nil {
		message.Sender = sender
	}

	fresh, err := s.convRepo.FindByID(conv.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, common.ErrConversationNotFound
	}

	unread, err := s.messageRepo.CountUnreadByConversation(conv.ID, senderID)
	if err != nil {
		return nil, err
	}

	return &domain.SendMessageResponse{
		Message:      message.ToResponse(),
		Conversation: fresh.ToResponse(senderID, unread),
	}, nil
}

// GetConversations returns the user's conversations, most recently
// active first, each with the other participant, a listing preview, and
// the caller's unread count
func (s *messageService) GetConversations(userID uint64, page, limit int) ([]*domain.ConversationResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	convs, total, err := s.convRepo.ListByUser(userID, offset, limit)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.ConversationResponse, len(convs))
	for i := range convs {
		unread, err := s.messageRepo.CountUnreadByConversation(convs[i].ID, userID)
		if err != nil {
			return nil, nil, err
		}
		responses[i] = convs[i].ToResponse(userID, unread)
	}
	return responses, common.NewMeta(page, limit, total), nil
}

// GetMessages returns one page of a conversation the caller belongs to.
// Pages are fetched newest-first and reversed, so each page reads oldest
// to newest. Fetching marks the caller's unread messages read; the
// returned rows still show their pre-fetch read state.
func (s *messageService) GetMessages(conversationID, callerID uint64, page, limit int) ([]*domain.MessageResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	conv, err := s.convRepo.FindByID(conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, common.ErrConversationNotFound
	}
	if !conv.HasParticipant(callerID) {
		return nil, nil, common.ErrForbidden
	}

	offset := (page - 1) * limit
	messages, total, err := s.messageRepo.ListByConversation(conversationID, offset, limit)
	if err != nil {
		return nil, nil, err
	}

	if err := s.messageRepo.MarkConversationRead(conversationID, callerID); err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.MessageResponse, len(messages))
	for i := range messages {
		responses[len(messages)-1-i] = messages[i].ToResponse()
	}
	return responses, common.NewMeta(page, limit, total), nil
}

// DeleteMessage removes a message. Only the sender may delete; the
// conversation summary is intentionally left as is, so a deleted last
// message can linger in the preview.
func (s *messageService) DeleteMessage(messageID, callerID uint64) error {
	message, err := s.messageRepo.FindByID(messageID)
	if err != nil {
		return err
	}
	if message == nil {
		return common.ErrMessageNotFound
	}
	if message.SenderID != callerID {
		return common.ErrForbidden
	}
	return s.messageRepo.Delete(messageID)
}

// UnreadCount returns the user's unread message total across conversations
func (s *messageService) UnreadCount(userID uint64) (int64, error) {
	return s.messageRepo.CountUnreadByUser(userID)
}
