package repository

import (
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ThoughtRepository handles database operations for Thought
type ThoughtRepository struct {
	db *gorm.DB
}

func NewThoughtRepository(db *gorm.DB) *ThoughtRepository {
	return &ThoughtRepository{db: db}
}

func (r *ThoughtRepository) Create(t *model.Thought) error {
	return r.db.Create(t).Error
}

func (r *ThoughtRepository) FindByID(id uuid.UUID) (*model.Thought, error) {
	var t model.Thought
	err := r.db.Where("id = ?", id).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *ThoughtRepository) ListAll() ([]model.Thought, error) {
	thoughts := []model.Thought{}
	err := r.db.Order("created_at DESC").Find(&thoughts).Error
	return thoughts, err
}

func (r *ThoughtRepository) ListByDate(date string) ([]model.Thought, error) {
	thoughts := []model.Thought{}
	err := r.db.
		Where("publish_date = ?", date).
		Order("created_at DESC").
		Find(&thoughts).Error
	return thoughts, err
}

func (r *ThoughtRepository) Update(id uuid.UUID, text string, status model.ContentStatus) error {
	return r.db.Model(&model.Thought{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"text":       text,
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

func (r *ThoughtRepository) Patch(id uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	return r.db.Model(&model.Thought{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *ThoughtRepository) Delete(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Thought{}).Error
}
