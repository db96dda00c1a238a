package repository

import (
	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnswerRepository handles database operations for Answer
type AnswerRepository struct {
	db *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{db: db}
}

func (r *AnswerRepository) Create(a *model.Answer) error {
	return r.db.Create(a).Error
}

// ListAll returns every answer, newest first
func (r *AnswerRepository) ListAll() ([]model.Answer, error) {
	answers := []model.Answer{}
	err := r.db.Order("submitted_at DESC").Find(&answers).Error
	return answers, err
}

// ListByDate returns answers submitted on the given UTC calendar date
func (r *AnswerRepository) ListByDate(date string) ([]model.Answer, error) {
	answers := []model.Answer{}
	err := r.db.
		Where("to_char(submitted_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') = ?", date).
		Order("submitted_at DESC").
		Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Answer{}).Error
}
