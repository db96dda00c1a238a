package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageRepository handles database operations for Message
type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts a new message
func (r *MessageRepository) Create(msg *model.Message) error {
	return r.db.Create(msg).Error
}

// FindByID finds a message by ID
func (r *MessageRepository) FindByID(id uuid.UUID) (*model.Message, error) {
	var msg model.Message
	err := r.db.Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListByConversation returns all messages of a conversation in
// timestamp-ascending order, the order subscribers see snapshots in
func (r *MessageRepository) ListByConversation(conversationID string) ([]model.Message, error) {
	messages := []model.Message{}
	err := r.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead flips every unread message not authored by readerID
// to read in one statement. The predicate runs store-side against
// idx_conv_read instead of filtering rows in application code.
func (r *MessageRepository) MarkConversationRead(conversationID string, readerID uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_status = ?",
			conversationID, readerID, model.ReadStatusUnread).
		Updates(map[string]interface{}{
			"read_status": model.ReadStatusRead,
			"read_at":     now,
		}).Error
}

// UpdateDeliveryStatus records an explicit delivered/failed transition.
// Nothing in the system drives this automatically; callers invoke it.
func (r *MessageRepository) UpdateDeliveryStatus(id uuid.UUID, status model.DeliveryStatus) error {
	updates := map[string]interface{}{"delivery_status": status}
	if status == model.DeliveryStatusFailed {
		updates["retry_count"] = gorm.Expr("retry_count + 1")
	}
	return r.db.Model(&model.Message{}).
		Where("id = ?", id).
		Updates(updates).Error
}
