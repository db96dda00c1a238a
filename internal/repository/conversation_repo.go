package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ConversationRepository handles database operations for Conversation
type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// FindByID finds a conversation by its deterministic pair key
func (r *ConversationRepository) FindByID(id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.Where("id = ?", id).First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateIfAbsent inserts the conversation unless a row with the same key
// already exists. Racing first-senders both land on the stored row.
func (r *ConversationRepository) CreateIfAbsent(conv *model.Conversation) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(conv).Error
}

// ListForUser returns conversations the user participates in, newest
// activity first
func (r *ConversationRepository) ListForUser(userID uuid.UUID) ([]model.Conversation, error) {
	var conversations []model.Conversation
	err := r.db.
		Where("admin_id = ? OR student_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}

// SetLastMessage updates the denormalized last-message fields and bumps the
// recipient's unread counter in the same statement. The counter moves via a
// SQL-side increment, so concurrent sends cannot under-count.
func (r *ConversationRepository) SetLastMessage(conversationID, text string, senderID uuid.UUID, recipient model.SenderType, sentAt time.Time) error {
	counter := "student_unread_count"
	if recipient == model.SenderTypeAdmin {
		counter = "admin_unread_count"
	}
	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":           text,
			"last_message_time":      sentAt,
			"last_message_sender_id": senderID,
			counter:                  gorm.Expr(counter+" + ?", 1),
			"updated_at":             time.Now(),
		}).Error
}

// ResetUnread zeroes the unread counter belonging to the given side
func (r *ConversationRepository) ResetUnread(conversationID string, side model.SenderType) error {
	counter := "student_unread_count"
	if side == model.SenderTypeAdmin {
		counter = "admin_unread_count"
	}
	return r.db.Model(&model.Conversation{}).
		Where("id = ?", conversationID).
		Update(counter, 0).Error
}
