package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
)

// ErrNotParticipant is returned when a caller acts on a conversation they
// are not part of
var ErrNotParticipant = errors.New("you are not a participant of this conversation")

// conversationStore is the slice of the conversation repository the service needs
type conversationStore interface {
	FindByID(id string) (*model.Conversation, error)
	CreateIfAbsent(conv *model.Conversation) error
	ListForUser(userID uuid.UUID) ([]model.Conversation, error)
	SetLastMessage(conversationID, text string, senderID uuid.UUID, recipient model.SenderType, sentAt time.Time) error
	ResetUnread(conversationID string, side model.SenderType) error
}

// messageStore is the slice of the message repository the service needs
type messageStore interface {
	Create(msg *model.Message) error
	FindByID(id uuid.UUID) (*model.Message, error)
	ListByConversation(conversationID string) ([]model.Message, error)
	MarkConversationRead(conversationID string, readerID uuid.UUID) error
	UpdateDeliveryStatus(id uuid.UUID, status model.DeliveryStatus) error
}

// participantStore resolves display names and roles of conversation members
type participantStore interface {
	FindByID(id uuid.UUID) (*model.User, error)
}

// ConversationService owns admin-student chat threads and their messages
type ConversationService struct {
	conversations conversationStore
	messages      messageStore
	users         participantStore
}

func NewConversationService(conversations conversationStore, messages messageStore, users participantStore) *ConversationService {
	return &ConversationService{
		conversations: conversations,
		messages:      messages,
		users:         users,
	}
}

// effectiveRole resolves a user's side of the conversation, falling back to
// the email-domain heuristic when the profile has no stored role
func effectiveRole(u *model.User) model.Role {
	if u.Role.IsValid() {
		return u.Role
	}
	return model.DefaultRoleForEmail(u.Email)
}

// GetOrCreateConversation returns the single conversation between the
// caller and the partner, creating it zeroed if absent. The deterministic
// pair key guarantees both directions land on the same row; an existing
// row is returned untouched.
func (s *ConversationService) GetOrCreateConversation(callerID, partnerID uuid.UUID) (*model.Conversation, error) {
	if callerID == partnerID {
		return nil, errors.New("cannot start a conversation with yourself")
	}

	caller, err := s.users.FindByID(callerID)
	if err != nil {
		return nil, errors.New("caller not found")
	}
	partner, err := s.users.FindByID(partnerID)
	if err != nil {
		return nil, errors.New("partner not found")
	}

	callerRole, partnerRole := effectiveRole(caller), effectiveRole(partner)
	if callerRole == partnerRole {
		return nil, errors.New("conversation requires one admin and one student")
	}

	key := model.ConversationKey(callerID, partnerID)
	if existing, err := s.conversations.FindByID(key); err == nil {
		return existing, nil
	}

	admin, student := caller, partner
	if callerRole == model.RoleStudent {
		admin, student = partner, caller
	}

	conv := &model.Conversation{
		ID:            key,
		AdminID:       admin.ID,
		StudentID:     student.ID,
		AdminName:     admin.Name,
		StudentName:   student.Name,
		AdminAvatar:   admin.Avatar,
		StudentAvatar: student.Avatar,
	}
	if err := s.conversations.CreateIfAbsent(conv); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	// Re-read so a racing first-sender's row wins for both
	return s.conversations.FindByID(key)
}

// SendMessage validates and appends a message, then updates the parent's
// denormalized last-message fields and bumps the recipient's unread
// counter. Validation failures happen before any write.
func (s *ConversationService) SendMessage(conversationID string, senderID uuid.UUID, content string) (*model.Message, error) {
	trimmed, err := model.ValidateContent(content)
	if err != nil {
		return nil, err
	}

	conv, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return nil, errors.New("conversation not found")
	}

	var senderType, recipientType model.SenderType
	switch senderID {
	case conv.AdminID:
		senderType, recipientType = model.SenderTypeAdmin, model.SenderTypeStudent
	case conv.StudentID:
		senderType, recipientType = model.SenderTypeStudent, model.SenderTypeAdmin
	default:
		return nil, ErrNotParticipant
	}

	senderName := "Unknown"
	if sender, err := s.users.FindByID(senderID); err == nil && sender.Name != "" {
		senderName = sender.Name
	}

	msg := &model.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     senderType,
		SenderName:     senderName,
		Content:        trimmed,
		DeliveryStatus: model.DeliveryStatusSent,
		ReadStatus:     model.ReadStatusUnread,
		CreatedAt:      time.Now(),
	}
	if err := s.messages.Create(msg); err != nil {
		return nil, errors.New("failed to send message")
	}

	if err := s.conversations.SetLastMessage(conversationID, trimmed, senderID, recipientType, msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("message stored but conversation update failed: %w", err)
	}

	return msg, nil
}

// ListConversations returns the caller's conversations with their own
// unread counts, newest activity first
func (s *ConversationService) ListConversations(userID uuid.UUID) ([]model.ConversationListItem, error) {
	conversations, err := s.conversations.ListForUser(userID)
	if err != nil {
		return nil, err
	}

	result := []model.ConversationListItem{}
	for _, conv := range conversations {
		result = append(result, model.ConversationListItem{
			Conversation: conv,
			UnreadCount:  conv.UnreadCountFor(userID),
		})
	}
	return result, nil
}

// GetMessages returns the full message list of a conversation in
// timestamp-ascending order
func (s *ConversationService) GetMessages(conversationID string, userID uuid.UUID) ([]model.Message, error) {
	conv, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return nil, errors.New("conversation not found")
	}
	if userID != conv.AdminID && userID != conv.StudentID {
		return nil, ErrNotParticipant
	}

	return s.messages.ListByConversation(conversationID)
}

// LoadMessages fetches a conversation's ordered messages without a
// participant check; the websocket hub uses it to build snapshots after the
// subscription was already authorized.
func (s *ConversationService) LoadMessages(conversationID string) ([]model.Message, error) {
	return s.messages.ListByConversation(conversationID)
}

// MarkAsRead flips every unread message not authored by the caller to read
// and zeroes the caller's own unread counter. The caller's messages keep
// their read state.
func (s *ConversationService) MarkAsRead(conversationID string, userID uuid.UUID) error {
	conv, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return errors.New("conversation not found")
	}

	var side model.SenderType
	switch userID {
	case conv.AdminID:
		side = model.SenderTypeAdmin
	case conv.StudentID:
		side = model.SenderTypeStudent
	default:
		return ErrNotParticipant
	}

	if err := s.messages.MarkConversationRead(conversationID, userID); err != nil {
		return err
	}
	return s.conversations.ResetUnread(conversationID, side)
}

// UpdateDeliveryStatus records an explicit delivered/failed transition for
// a message. No automatic process drives this.
func (s *ConversationService) UpdateDeliveryStatus(messageID uuid.UUID, status model.DeliveryStatus) error {
	if status != model.DeliveryStatusDelivered && status != model.DeliveryStatusFailed {
		return errors.New("invalid delivery status")
	}
	return s.messages.UpdateDeliveryStatus(messageID, status)
}

// Participant returns the conversation and the other side's user id for a
// given member; used for push notifications after a send.
func (s *ConversationService) Participant(conversationID string, userID uuid.UUID) (*model.Conversation, uuid.UUID, error) {
	conv, err := s.conversations.FindByID(conversationID)
	if err != nil {
		return nil, uuid.Nil, errors.New("conversation not found")
	}
	switch userID {
	case conv.AdminID:
		return conv, conv.StudentID, nil
	case conv.StudentID:
		return conv, conv.AdminID, nil
	}
	return nil, uuid.Nil, ErrNotParticipant
}
