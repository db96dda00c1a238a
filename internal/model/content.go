package model

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the publish-date partition key format (YYYY-MM-DD)
const DateLayout = "2006-01-02"

// Today returns the current UTC calendar date in partition-key form
func Today() string {
	return time.Now().UTC().Format(DateLayout)
}

// ContentStatus is the publication state of a question or thought
type ContentStatus string

const (
	ContentStatusPublished ContentStatus = "published"
	ContentStatusDraft     ContentStatus = "draft"
)

// Question is the daily question students answer. PublishDate is the
// partition key separating "what shows today" from full history.
type Question struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text          string        `json:"text" gorm:"type:text;not null"`
	Status        ContentStatus `json:"status" gorm:"type:varchar(20);default:'published'"`
	Disabled      bool          `json:"disabled" gorm:"default:false"`
	CreatedByID   uuid.UUID     `json:"created_by_id" gorm:"type:uuid"`
	CreatedByName string        `json:"created_by_name" gorm:"size:100"`
	PublishDate   string        `json:"publish_date" gorm:"size:10;index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Thought is the daily thought published to students
type Thought struct {
	ID            uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Text          string        `json:"text" gorm:"type:text;not null"`
	Status        ContentStatus `json:"status" gorm:"type:varchar(20);default:'published'"`
	Disabled      bool          `json:"disabled" gorm:"default:false"`
	CreatedByID   uuid.UUID     `json:"created_by_id" gorm:"type:uuid"`
	CreatedByName string        `json:"created_by_name" gorm:"size:100"`
	PublishDate   string        `json:"publish_date" gorm:"size:10;index"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Answer is a student's answer to a question. Uniqueness per
// (student, question) is a UI expectation, not enforced here.
type Answer struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StudentID   uuid.UUID `json:"student_id" gorm:"type:uuid;index;not null"`
	StudentName string    `json:"student_name" gorm:"size:100"`
	QuestionID  uuid.UUID `json:"question_id" gorm:"type:uuid;index;not null"`
	Answer      string    `json:"answer" gorm:"type:text;not null"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Streak tracks a student's consecutive-day answering record
type Streak struct {
	StudentID        uuid.UUID `json:"student_id" gorm:"type:uuid;primaryKey"`
	StreakCount      int       `json:"streak_count" gorm:"default:0"`
	LastAnsweredDate *string   `json:"last_answered_date" gorm:"size:10"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NextStreak computes the streak value after an answer on answeredDate
// (YYYY-MM-DD). Same-day answers leave the count unchanged, a consecutive
// day increments it, anything else resets to 1.
func NextStreak(current int, lastAnswered *string, answeredDate string) int {
	if lastAnswered == nil {
		return 1
	}
	if *lastAnswered == answeredDate {
		if current > 0 {
			return current
		}
		return 1
	}
	last, err := time.Parse(DateLayout, *lastAnswered)
	if err != nil {
		return 1
	}
	answered, err := time.Parse(DateLayout, answeredDate)
	if err != nil {
		return 1
	}
	if answered.Sub(last) == 24*time.Hour {
		return current + 1
	}
	return 1
}
