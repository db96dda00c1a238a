package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxMessageLength is the hard cap on message content, after trimming
const MaxMessageLength = 5000

// SenderType records which side of the conversation authored a message
type SenderType string

const (
	SenderTypeAdmin   SenderType = "admin"
	SenderTypeStudent SenderType = "student"
)

// DeliveryStatus is the message delivery state. Only "sent" is written by
// the send path; delivered/failed transitions are an explicit caller action.
type DeliveryStatus string

const (
	DeliveryStatusSent      DeliveryStatus = "sent"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
)

// ReadStatus is the recipient-side read state of a message
type ReadStatus string

const (
	ReadStatusUnread ReadStatus = "unread"
	ReadStatusRead   ReadStatus = "read"
)

// Message is a single chat message. Immutable after creation except for the
// delivery/read status transitions.
type Message struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ConversationID string         `json:"conversation_id" gorm:"size:80;index:idx_conv_read;not null"`
	SenderID       uuid.UUID      `json:"sender_id" gorm:"type:uuid;index;not null"`
	SenderType     SenderType     `json:"sender_type" gorm:"type:varchar(20);not null"`
	SenderName     string         `json:"sender_name" gorm:"size:100"`
	Content        string         `json:"content" gorm:"type:text;not null"`
	DeliveryStatus DeliveryStatus `json:"delivery_status" gorm:"type:varchar(20);default:'sent'"`
	ReadStatus     ReadStatus     `json:"read_status" gorm:"type:varchar(20);default:'unread';index:idx_conv_read"`
	ReadAt         *time.Time     `json:"read_at,omitempty"`
	RetryCount     int            `json:"retry_count,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

var (
	// ErrEmptyContent is returned when message content is empty after trimming
	ErrEmptyContent = errors.New("message content must not be empty")
	// ErrContentTooLong is returned when content exceeds MaxMessageLength
	ErrContentTooLong = errors.New("message content exceeds maximum length")
)

// ValidateContent trims the content and checks the length bounds. Returns
// the trimmed content; callers persist the trimmed form.
func ValidateContent(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", ErrEmptyContent
	}
	if len(trimmed) > MaxMessageLength {
		return "", ErrContentTooLong
	}
	return trimmed, nil
}
