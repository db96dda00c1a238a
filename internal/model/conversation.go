package model

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is the single chat thread between an admin and a student.
// Its primary key is the deterministic sorted pair of the two participant
// ids, so the same pair always maps to the same row no matter who sends
// first. Conversations are never deleted.
type Conversation struct {
	ID                  string     `json:"id" gorm:"primaryKey;size:80"`
	AdminID             uuid.UUID  `json:"admin_id" gorm:"type:uuid;index;not null"`
	StudentID           uuid.UUID  `json:"student_id" gorm:"type:uuid;index;not null"`
	AdminName           string     `json:"admin_name" gorm:"size:100"`
	StudentName         string     `json:"student_name" gorm:"size:100"`
	AdminAvatar         string     `json:"admin_avatar,omitempty" gorm:"size:500"`
	StudentAvatar       string     `json:"student_avatar,omitempty" gorm:"size:500"`
	LastMessage         string     `json:"last_message" gorm:"type:text"`
	LastMessageTime     *time.Time `json:"last_message_time"`
	LastMessageSenderID *uuid.UUID `json:"last_message_sender_id" gorm:"type:uuid"`
	AdminUnreadCount    int        `json:"admin_unread_count" gorm:"default:0"`
	StudentUnreadCount  int        `json:"student_unread_count" gorm:"default:0"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ConversationKey derives the deterministic conversation id for a pair of
// participants: min(a,b) + "_" + max(a,b). Symmetric in its arguments.
func ConversationKey(a, b uuid.UUID) string {
	s1, s2 := a.String(), b.String()
	if s1 > s2 {
		s1, s2 = s2, s1
	}
	return s1 + "_" + s2
}

// UnreadCountFor returns the unread counter belonging to the given side
func (c *Conversation) UnreadCountFor(userID uuid.UUID) int {
	if userID == c.AdminID {
		return c.AdminUnreadCount
	}
	return c.StudentUnreadCount
}
