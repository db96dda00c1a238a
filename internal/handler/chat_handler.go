package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/service"
	"github.com/freka11/schoolday/internal/ws"
	"github.com/freka11/schoolday/pkg/notification"
)

// ChatHandler handles admin-student conversation endpoints
type ChatHandler struct {
	conversations *service.ConversationService
	hub           *ws.Hub
	notifier      *notification.NotificationService
}

func NewChatHandler(conversations *service.ConversationService, hub *ws.Hub, notifier *notification.NotificationService) *ChatHandler {
	return &ChatHandler{
		conversations: conversations,
		hub:           hub,
		notifier:      notifier,
	}
}

func sessionUser(c *gin.Context) (*model.SessionUser, bool) {
	user := middleware.SessionFrom(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authentication required"})
		return nil, false
	}
	return user, true
}

// GetOrCreateDirect godoc
// @Summary Get or create the conversation with a partner
// @Description Both directions resolve to the same conversation; an
// @Description existing thread is returned untouched.
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body model.DirectConversationRequest true "Partner ID"
// @Success 200 {object} model.Conversation
// @Failure 400 {object} model.ErrorResponse
// @Router /conversations/direct [post]
func (h *ChatHandler) GetOrCreateDirect(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req model.DirectConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	conv, err := h.conversations.GetOrCreateConversation(user.UID, req.PartnerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, conv)
}

// GetConversations godoc
// @Summary List the caller's conversations
// @Description Newest activity first, each with the caller's unread count.
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ConversationListItem
// @Router /conversations [get]
func (h *ChatHandler) GetConversations(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	conversations, err := h.conversations.ListConversations(user.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Failed to get conversations"})
		return
	}

	c.JSON(http.StatusOK, conversations)
}

// GetMessages godoc
// @Summary Get a conversation's messages
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {array} model.Message
// @Failure 403 {object} model.ErrorResponse
// @Router /conversations/{id}/messages [get]
func (h *ChatHandler) GetMessages(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	messages, err := h.conversations.GetMessages(c.Param("id"), user.UID)
	if err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, messages)
}

// SendMessage godoc
// @Summary Send a message in a conversation
// @Description Validates content, appends the message, bumps the
// @Description recipient's unread counter and fans the change out to
// @Description snapshot subscribers.
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param body body model.SendMessageRequest true "Message content"
// @Success 201 {object} model.Message
// @Failure 400 {object} model.ErrorResponse
// @Router /conversations/{id}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	conversationID := c.Param("id")
	msg, err := h.conversations.SendMessage(conversationID, user.UID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrEmptyContent), errors.Is(err, model.ErrContentTooLong):
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		case errors.Is(err, service.ErrNotParticipant):
			c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: err.Error()})
		}
		return
	}

	// Refresh subscribers and push to the recipient's devices
	h.hub.NotifyConversation(conversationID)
	go h.notifyRecipient(conversationID, user.UID, msg)

	c.JSON(http.StatusCreated, msg)
}

// notifyRecipient sends the FCM push for a new message. Failures are
// logged inside the notifier; the message is already stored.
func (h *ChatHandler) notifyRecipient(conversationID string, senderID uuid.UUID, msg *model.Message) {
	if h.notifier == nil {
		return
	}
	_, recipientID, err := h.conversations.Participant(conversationID, senderID)
	if err != nil {
		return
	}
	h.notifier.SendMessageNotification(context.Background(), recipientID, msg.SenderName, msg.Content, conversationID)
}

// MarkAsRead godoc
// @Summary Mark a conversation read for the caller
// @Description Flips every unread message authored by the other side to
// @Description read and zeroes the caller's unread counter.
// @Tags Conversations
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} model.SuccessResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /conversations/{id}/read [post]
func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	conversationID := c.Param("id")
	if err := h.conversations.MarkAsRead(conversationID, user.UID); err != nil {
		if errors.Is(err, service.ErrNotParticipant) {
			c.JSON(http.StatusForbidden, model.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	h.hub.NotifyConversation(conversationID)

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Conversation marked as read"})
}

// UpdateDeliveryStatus godoc
// @Summary Record a delivered/failed transition for a message
// @Tags Conversations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Message ID"
// @Param body body model.UpdateDeliveryStatusRequest true "New status"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /messages/{id}/status [patch]
func (h *ChatHandler) UpdateDeliveryStatus(c *gin.Context) {
	messageID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid message ID"})
		return
	}

	var req model.UpdateDeliveryStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.conversations.UpdateDeliveryStatus(messageID, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Delivery status updated"})
}
