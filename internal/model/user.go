package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies an account as school staff or student
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// IsValid reports whether the role is one of the two known values.
// A profile row with any other value does not override the domain heuristic.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleStudent
}

// AdminEmailDomain is the staff mail domain used by the default-role heuristic
const AdminEmailDomain = "admin.com"

// User represents a portal account. Role may be empty, in which case the
// session resolver falls back to the email-domain heuristic.
type User struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string         `json:"name" gorm:"size:100;not null"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Password  string         `json:"-" gorm:"size:255"`
	Role      Role           `json:"role" gorm:"type:varchar(20);default:''"`
	Avatar    string         `json:"avatar" gorm:"size:500;default:''"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// DefaultRoleForEmail applies the email-domain heuristic: accounts on the
// staff domain default to admin, everyone else to student.
func DefaultRoleForEmail(email string) Role {
	at := strings.LastIndex(email, "@")
	if at >= 0 && strings.EqualFold(email[at+1:], AdminEmailDomain) {
		return RoleAdmin
	}
	return RoleStudent
}

// Permissions describes what a session may do against the content store
type Permissions struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}

// PermissionsForRole returns the fixed permission set for a role
func PermissionsForRole(role Role) Permissions {
	if role == RoleAdmin {
		return Permissions{Read: true, Write: true, Delete: true}
	}
	return Permissions{Read: true, Write: true}
}

// RoleSource records which step of the two-step resolution produced the role
type RoleSource string

const (
	RoleSourceDefault RoleSource = "default"
	RoleSourceProfile RoleSource = "profile"
)

// RoleResolution is the tagged result of resolving a caller's role
type RoleResolution struct {
	Role   Role       `json:"role"`
	Source RoleSource `json:"source"`
}

// SessionUser is the resolved identity attached to an authenticated request
type SessionUser struct {
	UID         uuid.UUID   `json:"uid"`
	Email       string      `json:"email"`
	Name        string      `json:"name"`
	Role        Role        `json:"role"`
	Permissions Permissions `json:"permissions"`
}

// UserDevice holds an FCM registration token for push notifications
type UserDevice struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID       uuid.UUID `json:"user_id" gorm:"not null;index"`
	FCMToken     string    `json:"fcm_token" gorm:"not null;uniqueIndex:idx_user_token"`
	DeviceType   string    `json:"device_type" gorm:"size:20;default:'web'"`
	LastActiveAt time.Time `json:"last_active_at"`
	CreatedAt    time.Time `json:"created_at"`
}

// PasswordResetCode is a one-time code mailed out for password recovery
type PasswordResetCode struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Code      string     `json:"-" gorm:"size:6;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// IsValid checks if the reset code can still be used
func (p *PasswordResetCode) IsValid() bool {
	return p.UsedAt == nil && time.Now().Before(p.ExpiresAt)
}
