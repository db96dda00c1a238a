package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetCodeRepository handles database operations for password reset codes
type ResetCodeRepository struct {
	db *gorm.DB
}

func NewResetCodeRepository(db *gorm.DB) *ResetCodeRepository {
	return &ResetCodeRepository{db: db}
}

// Create inserts a new reset code
func (r *ResetCodeRepository) Create(code *model.PasswordResetCode) error {
	return r.db.Create(code).Error
}

// FindValid finds an unused, non-expired code for a user
func (r *ResetCodeRepository) FindValid(userID uuid.UUID, code string) (*model.PasswordResetCode, error) {
	var rc model.PasswordResetCode
	err := r.db.
		Where("user_id = ? AND code = ? AND expires_at > ? AND used_at IS NULL",
			userID, code, time.Now()).
		Order("created_at DESC").
		First(&rc).Error
	if err != nil {
		return nil, err
	}
	return &rc, nil
}

// MarkAsUsed marks a reset code as consumed
func (r *ResetCodeRepository) MarkAsUsed(id uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.PasswordResetCode{}).
		Where("id = ?", id).
		Update("used_at", now).Error
}

// InvalidateAllForUser burns every pending code when a new one is issued
func (r *ResetCodeRepository) InvalidateAllForUser(userID uuid.UUID) error {
	now := time.Now()
	return r.db.Model(&model.PasswordResetCode{}).
		Where("user_id = ? AND used_at IS NULL AND expires_at > ?", userID, time.Now()).
		Update("used_at", now).Error
}

// CountRecent counts codes issued to a user since the given time (rate limiting)
func (r *ResetCodeRepository) CountRecent(userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&model.PasswordResetCode{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	return count, err
}
