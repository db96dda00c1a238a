package model

import "github.com/google/uuid"

// ========== Auth DTOs ==========

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// SessionResponse is returned by the token-for-cookie exchange endpoint
type SessionResponse struct {
	Success bool        `json:"success"`
	User    SessionUser `json:"user"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

type ResetCodeSentResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn int    `json:"expires_in"` // seconds until code expires
}

type RegisterDeviceRequest struct {
	FCMToken   string `json:"fcm_token" binding:"required"`
	DeviceType string `json:"device_type" binding:"required"`
}

// ========== Content DTOs ==========

type CreateQuestionRequest struct {
	Question string        `json:"question"`
	Status   ContentStatus `json:"status"`
	// Optional override; defaults to today's UTC date
	PublishDate string `json:"publish_date"`
}

type CreateThoughtRequest struct {
	Thought     string        `json:"thought"`
	Status      ContentStatus `json:"status"`
	PublishDate string        `json:"publish_date"`
}

type UpdateContentRequest struct {
	ID     string        `json:"id"`
	Text   string        `json:"text"`
	Status ContentStatus `json:"status"`
}

type PatchContentRequest struct {
	Disabled *bool `json:"disabled"`
}

type CreateAnswerRequest struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	QuestionID  string `json:"questionId"`
	Answer      string `json:"answer"`
}

type BulkQuestionsRequest struct {
	Questions []CreateQuestionRequest `json:"questions" binding:"required,min=1"`
}

// BulkItemResult reports the outcome of one write in a batch. Writes that
// succeeded before a later failure stay written; there is no rollback.
type BulkItemResult struct {
	Index   int    `json:"index"`
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BulkQuestionsResponse struct {
	Success bool             `json:"success"`
	Results []BulkItemResult `json:"results"`
}

type CreatedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// ========== Conversation DTOs ==========

type DirectConversationRequest struct {
	PartnerID uuid.UUID `json:"partner_id" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ConversationListItem struct {
	Conversation
	UnreadCount int `json:"unread_count"`
}

type UpdateDeliveryStatusRequest struct {
	Status DeliveryStatus `json:"status" binding:"required,oneof=delivered failed"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventSubscribe   = "subscribe"
	WSEventUnsubscribe = "unsubscribe"
	WSEventSnapshot    = "messages_snapshot"
	WSEventRead        = "mark_read"
	WSEventError       = "error"
)

type SubscribeEvent struct {
	ConversationID string `json:"conversation_id"`
}

// SnapshotEvent carries the full ordered message list for a conversation.
// Delivered on every change, mirroring a store-pushed snapshot.
type SnapshotEvent struct {
	ConversationID string    `json:"conversation_id"`
	Messages       []Message `json:"messages"`
}

type WSErrorEvent struct {
	ConversationID string `json:"conversation_id,omitempty"`
	Error          string `json:"error"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Login page for the portal tree the caller was denied from
	Redirect string `json:"redirect,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// UploadResponse is returned after a successful avatar upload
type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}
