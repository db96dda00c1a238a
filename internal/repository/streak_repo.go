package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakRepository handles database operations for Streak
type StreakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Find returns the streak record for a student
func (r *StreakRepository) Find(studentID uuid.UUID) (*model.Streak, error) {
	var s model.Streak
	err := r.db.Where("student_id = ?", studentID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert writes the streak row, replacing counters on conflict
func (r *StreakRepository) Upsert(s *model.Streak) error {
	s.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "student_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"streak_count":       s.StreakCount,
			"last_answered_date": s.LastAnsweredDate,
			"updated_at":         s.UpdatedAt,
		}),
	}).Create(s).Error
}
