package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lokalo/lokalo-backend/internal/common"
	"github.com/lokalo/lokalo-backend/internal/domain"
	"github.com/lokalo/lokalo-backend/internal/middleware"
	"github.com/lokalo/lokalo-backend/internal/service"
	"github.com/lokalo/lokalo-backend/pkg/ginutil"
	"github.com/lokalo/lokalo-backend/pkg/logger"
)

// MessageHandler handles messaging HTTP requests
type MessageHandler struct {
	service       service.MessageService
	notifications service.NotificationService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService, notifications service.NotificationService) *MessageHandler {
	return &MessageHandler{service: service, notifications: notifications}
}

// SendMessage handles POST /api/v1/messages
// @Summary Send a message about a listing
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body domain.SendMessageRequest true "message payload"
// @Success 201 {object} common.APIResponse{data=domain.SendMessageResponse}
// @Router /messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	senderID := middleware.GetUserID(c)

	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := h.service.SendMessage(senderID, &req)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidInput):
			common.ErrorResponse(c, http.StatusBadRequest, "Invalid message", err)
		case errors.Is(err, common.ErrUserNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Recipient not found", err)
		case errors.Is(err, common.ErrListingNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Listing not found", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to send message", err)
		}
		return
	}

	// The message is committed; the notification is best effort.
	h.notifyRecipient(req.RecipientID, result)

	common.CreatedResponse(c, result)
}

func (h *MessageHandler) notifyRecipient(recipientID uint64, result *domain.SendMessageResponse) {
	text := "You have a new message"
	if result.Message != nil && result.Message.Sender != nil {
		text = fmt.Sprintf("New message from %s", result.Message.Sender.DisplayName)
	}

	relatedID := result.Conversation.ID
	relatedType := "conversation"
	if _, err := h.notifications.Create(recipientID, domain.NotificationTypeNewMessage, text, &relatedID, &relatedType); err != nil {
		logger.GetLogger().Warn().
			Err(err).
			Uint64("user_id", recipientID).
			Uint64("conversation_id", relatedID).
			Msg("new message notification failed")
	}
}

// GetConversations handles GET /api/v1/conversations
// @Summary List the authenticated user's conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationResponse}
// @Router /conversations [get]
func (h *MessageHandler) GetConversations(c *gin.Context) {
	page, limit := ginutil.Page(c, 20, 100)

	conversations, meta, err := h.service.GetConversations(middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list conversations", err)
		return
	}

	common.SuccessResponse(c, conversations, meta)
}

// GetMessages handles GET /api/v1/conversations/:id/messages
// @Summary List messages in a conversation, oldest first, and mark them read
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "conversation id"
// @Param page query int false "page number"
// @Param limit query int false "page size"
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Router /conversations/{id}/messages [get]
func (h *MessageHandler) GetMessages(c *gin.Context) {
	conversationID, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid conversation id", err)
		return
	}

	page, limit := ginutil.Page(c, 50, 100)

	messages, meta, err := h.service.GetMessages(conversationID, middleware.GetUserID(c), page, limit)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrConversationNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Conversation not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Not a participant", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to list messages", err)
		}
		return
	}

	common.SuccessResponse(c, messages, meta)
}

// DeleteMessage handles DELETE /api/v1/messages/:id
// @Summary Delete an own sent message
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param id path int true "message id"
// @Success 204
// @Router /messages/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid message id", err)
		return
	}

	if err := h.service.DeleteMessage(id, middleware.GetUserID(c)); err != nil {
		switch {
		case errors.Is(err, common.ErrMessageNotFound):
			common.ErrorResponse(c, http.StatusNotFound, "Message not found", err)
		case errors.Is(err, common.ErrForbidden):
			common.ErrorResponse(c, http.StatusForbidden, "Only the sender can delete a message", err)
		default:
			common.ErrorResponse(c, http.StatusInternalServerError, "Failed to delete message", err)
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// UnreadCount handles GET /api/v1/messages/unread-count
// @Summary Count unread messages across all conversations
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} common.APIResponse
// @Router /messages/unread-count [get]
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(middleware.GetUserID(c))
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to count unread messages", err)
		return
	}

	common.SuccessResponse(c, gin.H{"unread_count": count}, nil)
}
