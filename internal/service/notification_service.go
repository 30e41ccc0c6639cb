package service

import (
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/repository"
	"github.com/lokalo/lokalo-backend/internal/ws"
	"github.com/lokalo/lokalo-backend/pkg/logger"
)

// NotificationService notification business logic
type NotificationService interface {
	Create(userID uint64, notifType, message string, relatedID *uint64, relatedType *string) (*domain.NotificationResponse, error)
	GetList(userID uint64, page, limit int) ([]*domain.NotificationResponse, *common.Meta, error)
	UnreadCount(userID uint64) (int64, error)
	MarkAsRead(userID, notificationID uint64) error
	MarkAllAsRead(userID uint64) error
	Delete(userID, notificationID uint64) error
	ClearAll(userID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  *ws.Hub
}

// NewNotificationService creates a new NotificationService. hub may be
// nil; notifications are then persisted without a realtime push.
func NewNotificationService(repo repository.NotificationRepository, hub *ws.Hub) NotificationService {
	return &notificationService{repo: repo, hub: hub}
}

// Create validates, persists, and then pushes the notification to the
// recipient's live connections. The push is best effort: it happens only
// after the row is committed, and a failed or impossible delivery never
// rolls anything back.
func (s *notificationService) Create(userID uint64, notifType, message string, relatedID *uint64, relatedType *string) (*domain.NotificationResponse, error) {
	if !domain.ValidNotificationType(notifType) {
		return nil, common.ErrInvalidInput
	}
	if message == "" {
		return nil, common.ErrInvalidInput
	}

	notification := &domain.Notification{
		UserID:      userID,
		Type:        notifType,
		Message:     message,
		RelatedID:   relatedID,
		RelatedType: relatedType,
	}
	if err := s.repo.Create(notification); err != nil {
		return nil, err
	}

	response := notification.ToResponse()
	if s.hub != nil {
		s.hub.SendToUser(userID, &ws.Event{
			Type:    ws.EventTypeNotification,
			Payload: response,
		})
	}
	return response, nil
}

// GetList returns one page of the user's notifications, newest first,
// with the unread total in the meta block
func (s *notificationService) GetList(userID uint64, page, limit int) ([]*domain.NotificationResponse, *common.Meta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	offset := (page - 1) * limit
	notifications, total, err := s.repo.GetList(userID, offset, limit)
	if err != nil {
		return nil, nil, err
	}

	unread, err := s.repo.GetUnreadCount(userID)
	if err != nil {
		return nil, nil, err
	}

	responses := make([]*domain.NotificationResponse, len(notifications))
	for i := range notifications {
		responses[i] = notifications[i].ToResponse()
	}

	meta := common.NewMeta(page, limit, total)
	meta.Unread = unread
	return responses, meta, nil
}

// UnreadCount returns the number of unread notifications
func (s *notificationService) UnreadCount(userID uint64) (int64, error) {
	return s.repo.GetUnreadCount(userID)
}

// MarkAsRead marks one notification as read after an ownership check.
// Marking an already read notification succeeds without effect.
func (s *notificationService) MarkAsRead(userID, notificationID uint64) error {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return common.ErrNotFound
	}
	if notification.UserID != userID {
		return common.ErrForbidden
	}
	return s.repo.MarkAsRead(notificationID)
}

// MarkAllAsRead marks every unread notification for the user; idempotent
func (s *notificationService) MarkAllAsRead(userID uint64) error {
	return s.repo.MarkAllAsRead(userID)
}

// Delete removes one notification after an ownership check
func (s *notificationService) Delete(userID, notificationID uint64) error {
	notification, err := s.repo.FindByID(notificationID)
	if err != nil {
		return err
	}
	if notification == nil {
		return common.ErrNotFound
	}
	if notification.UserID != userID {
		return common.ErrForbidden
	}
	return s.repo.Delete(notificationID)
}

// ClearAll removes every notification belonging to the user
func (s *notificationService) ClearAll(userID uint64) error {
	return s.repo.DeleteAllByUser(userID)
}

// notify persists and pushes without surfacing errors to the caller.
// Shared by the listing, favorite, and message flows, where a failed
// notification must never fail the main operation.
func notify(svc NotificationService, userID uint64, notifType, message string, relatedID *uint64, relatedType *string) {
	if svc == nil {
		return
	}
	if _, err := svc.Create(userID, notifType, message, relatedID, relatedType); err != nil {
		logger.GetLogger().Warn().
			Err(err).
			Uint64("user_id", userID).
			Str("type", notifType).
			Msg("notification create failed")
	}
}
