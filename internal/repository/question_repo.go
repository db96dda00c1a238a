package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestionRepository handles database operations for Question
type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create inserts a new question
func (r *QuestionRepository) Create(q *model.Question) error {
	return r.db.Create(q).Error
}

// FindByID finds a question by ID
func (r *QuestionRepository) FindByID(id uuid.UUID) (*model.Question, error) {
	var q model.Question
	err := r.db.Where("id = ?", id).First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// ListAll returns the full question history, newest first
func (r *QuestionRepository) ListAll() ([]model.Question, error) {
	questions := []model.Question{}
	err := r.db.Order("created_at DESC").Find(&questions).Error
	return questions, err
}

// ListByDate returns questions whose publish date equals the given
// YYYY-MM-DD partition key
func (r *QuestionRepository) ListByDate(date string) ([]model.Question, error) {
	questions := []model.Question{}
	err := r.db.
		Where("publish_date = ?", date).
		Order("created_at DESC").
		Find(&questions).Error
	return questions, err
}

// Update overwrites text/status and bumps updated_at
func (r *QuestionRepository) Update(id uuid.UUID, text string, status model.ContentStatus) error {
	return r.db.Model(&model.Question{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":       text,
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

// Patch writes only the supplied fields plus updated_at
func (r *QuestionRepository) Patch(id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.Model(&model.Question{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// Delete removes the question
func (r *QuestionRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Question{}).Error
}
