package service

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/pkg/mailer"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListScopeAll selects the full history instead of today's partition
const ListScopeAll = "all"

// MissingFieldsError names the required fields absent from a create request
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// ErrInvalidID marks a malformed document id supplied by the caller
var ErrInvalidID = errors.New("invalid id")

type questionStore interface {
	Create(q *model.Question) error
	FindByID(id uuid.UUID) (*model.Question, error)
	ListAll() ([]model.Question, error)
	ListByDate(date string) ([]model.Question, error)
	Update(id uuid.UUID, text string, status model.ContentStatus) error
	Patch(id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
}

type thoughtStore interface {
	Create(t *model.Thought) error
	ListAll() ([]model.Thought, error)
	ListByDate(date string) ([]model.Thought, error)
	Update(id uuid.UUID, text string, status model.ContentStatus) error
	Patch(id uuid.UUID, fields map[string]interface{}) error
	Delete(id uuid.UUID) error
}

type answerStore interface {
	Create(a *model.Answer) error
	ListAll() ([]model.Answer, error)
	ListByDate(date string) ([]model.Answer, error)
	Delete(id uuid.UUID) error
}

type streakStore interface {
	Find(studentID uuid.UUID) (*model.Streak, error)
	Upsert(s *model.Streak) error
}

// studentLister enumerates students for the daily digest mail
type studentLister interface {
	ListByRole(role model.Role) ([]model.User, error)
}

// ContentService owns the date-partitioned daily content: questions,
// thoughts, answers, and streaks
type ContentService struct {
	questions questionStore
	thoughts  thoughtStore
	answers   answerStore
	streaks   streakStore
	students  studentLister
	mailer    *mailer.Mailer

	// today is injectable so date-partition behavior is testable
	today func() string
}

func NewContentService(
	questions questionStore,
	thoughts thoughtStore,
	answers answerStore,
	streaks streakStore,
	students studentLister,
	mailClient *mailer.Mailer,
) *ContentService {
	return &ContentService{
		questions: questions,
		thoughts:  thoughts,
		answers:   answers,
		streaks:   streaks,
		students:  students,
		mailer:    mailClient,
		today:     model.Today,
	}
}

// ==================== Questions ====================

// ListQuestions returns the full history for scope "all", otherwise only
// documents whose publish date equals today's UTC date
func (s *ContentService) ListQuestions(scope string) ([]model.Question, error) {
	if scope == ListScopeAll {
		return s.questions.ListAll()
	}
	return s.questions.ListByDate(s.today())
}

// CreateQuestion validates and stores a new question
func (s *ContentService) CreateQuestion(req model.CreateQuestionRequest, creator model.SessionUser) (uuid.UUID, error) {
	if strings.TrimSpace(req.Question) == "" {
		return uuid.Nil, &MissingFieldsError{Fields: []string{"question"}}
	}

	status := req.Status
	if status == "" {
		status = model.ContentStatusPublished
	}
	publishDate := req.PublishDate
	if publishDate == "" {
		publishDate = s.today()
	}

	q := &model.Question{
		Text:          strings.TrimSpace(req.Question),
		Status:        status,
		CreatedByID:   creator.UID,
		CreatedByName: creator.Name,
		PublishDate:   publishDate,
	}
	if err := s.questions.Create(q); err != nil {
		return uuid.Nil, err
	}
	return q.ID, nil
}

// UpdateQuestion overwrites text/status of an existing question
func (s *ContentService) UpdateQuestion(req model.UpdateContentRequest) error {
	id, err := requireID(req.ID)
	if err != nil {
		return err
	}
	return s.questions.Update(id, req.Text, req.Status)
}

// PatchQuestion writes only the supplied fields (the disabled toggle)
func (s *ContentService) PatchQuestion(rawID string, req model.PatchContentRequest) error {
	id, err := requireID(rawID)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if req.Disabled != nil {
		fields["disabled"] = *req.Disabled
	}
	if len(fields) == 0 {
		return &MissingFieldsError{Fields: []string{"disabled"}}
	}
	return s.questions.Patch(id, fields)
}

// DeleteQuestion removes a question by id
func (s *ContentService) DeleteQuestion(rawID string) error {
	id, err := requireID(rawID)
	if err != nil {
		return err
	}
	return s.questions.Delete(id)
}

// BulkCreateQuestions attempts every write and reports per-item outcomes.
// Items written before a later failure stay written; there is no rollback.
func (s *ContentService) BulkCreateQuestions(req model.BulkQuestionsRequest, creator model.SessionUser) model.BulkQuestionsResponse {
	resp := model.BulkQuestionsResponse{Success: true}
	for i, item := range req.Questions {
		result := model.BulkItemResult{Index: i}
		id, err := s.CreateQuestion(item, creator)
		if err != nil {
			result.Error = err.Error()
			resp.Success = false
		} else {
			result.Success = true
			result.ID = id.String()
		}
		resp.Results = append(resp.Results, result)
	}
	return resp
}

// ==================== Thoughts ====================

func (s *ContentService) ListThoughts(scope string) ([]model.Thought, error) {
	if scope == ListScopeAll {
		return s.thoughts.ListAll()
	}
	return s.thoughts.ListByDate(s.today())
}

func (s *ContentService) CreateThought(req model.CreateThoughtRequest, creator model.SessionUser) (uuid.UUID, error) {
	if strings.TrimSpace(req.Thought) == "" {
		return uuid.Nil, &MissingFieldsError{Fields: []string{"thought"}}
	}

	status := req.Status
	if status == "" {
		status = model.ContentStatusPublished
	}
	publishDate := req.PublishDate
	if publishDate == "" {
		publishDate = s.today()
	}

	t := &model.Thought{
		Text:          strings.TrimSpace(req.Thought),
		Status:        status,
		CreatedByID:   creator.UID,
		CreatedByName: creator.Name,
		PublishDate:   publishDate,
	}
	if err := s.thoughts.Create(t); err != nil {
		return uuid.Nil, err
	}
	return t.ID, nil
}

func (s *ContentService) UpdateThought(req model.UpdateContentRequest) error {
	id, err := requireID(req.ID)
	if err != nil {
		return err
	}
	return s.thoughts.Update(id, req.Text, req.Status)
}

func (s *ContentService) PatchThought(rawID string, req model.PatchContentRequest) error {
	id, err := requireID(rawID)
	if err != nil {
		return err
	}
	fields := map[string]interface{}{}
	if req.Disabled != nil {
		fields["disabled"] = *req.Disabled
	}
	if len(fields) == 0 {
		return &MissingFieldsError{Fields: []string{"disabled"}}
	}
	return s.thoughts.Patch(id, fields)
}

func (s *ContentService) DeleteThought(rawID string) error {
	id, err := requireID(rawID)
	if err != nil {
		return err
	}
	return s.thoughts.Delete(id)
}

// ==================== Answers ====================

func (s *ContentService) ListAnswers(scope string) ([]model.Answer, error) {
	if scope == ListScopeAll {
		return s.answers.ListAll()
	}
	return s.answers.ListByDate(s.today())
}

// CreateAnswer validates required fields, stores the answer, and advances
// the student's streak
func (s *ContentService) CreateAnswer(req model.CreateAnswerRequest) (uuid.UUID, error) {
	missing := []string{}
	if req.StudentID == "" {
		missing = append(missing, "studentId")
	}
	if req.StudentName == "" {
		missing = append(missing, "studentName")
	}
	if req.QuestionID == "" {
		missing = append(missing, "questionId")
	}
	if strings.TrimSpace(req.Answer) == "" {
		missing = append(missing, "answer")
	}
	if len(missing) > 0 {
		return uuid.Nil, &MissingFieldsError{Fields: missing}
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return uuid.Nil, errors.New("invalid studentId")
	}
	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		return uuid.Nil, errors.New("invalid questionId")
	}

	a := &model.Answer{
		StudentID:   studentID,
		StudentName: req.StudentName,
		QuestionID:  questionID,
		Answer:      strings.TrimSpace(req.Answer),
	}
	a.SubmittedAt = time.Now().UTC()
	if err := s.answers.Create(a); err != nil {
		return uuid.Nil, err
	}

	s.advanceStreak(studentID)

	return a.ID, nil
}

func (s *ContentService) DeleteAnswer(rawID string) error {
	id, err := requireID(rawID)
	if err != nil {
		return err
	}
	return s.answers.Delete(id)
}

// ==================== Streaks ====================

// GetStreak returns the student's streak, zero-valued when no record exists
func (s *ContentService) GetStreak(studentID uuid.UUID) (*model.Streak, error) {
	streak, err := s.streaks.Find(studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.Streak{StudentID: studentID}, nil
		}
		return nil, err
	}
	return streak, nil
}

// advanceStreak moves the student's streak for an answer submitted today.
// Streak failures never fail the answer write.
func (s *ContentService) advanceStreak(studentID uuid.UUID) {
	today := s.today()

	current := &model.Streak{StudentID: studentID}
	if existing, err := s.streaks.Find(studentID); err == nil {
		current = existing
	}

	current.StreakCount = model.NextStreak(current.StreakCount, current.LastAnsweredDate, today)
	current.LastAnsweredDate = &today
	if err := s.streaks.Upsert(current); err != nil {
		log.Printf("⚠️  Failed to update streak for %s: %v", studentID, err)
	}
}

// ==================== Daily digest ====================

// SendDailyDigest mails today's first published, enabled question to every
// student. Returns how many mails were attempted.
func (s *ContentService) SendDailyDigest() (int, error) {
	if s.mailer == nil {
		return 0, errors.New("mailer not configured")
	}

	questions, err := s.questions.ListByDate(s.today())
	if err != nil {
		return 0, err
	}

	var todays *model.Question
	for i := range questions {
		if questions[i].Status == model.ContentStatusPublished && !questions[i].Disabled {
			todays = &questions[i]
			break
		}
	}
	if todays == nil {
		return 0, errors.New("no published question for today")
	}

	students, err := s.students.ListByRole(model.RoleStudent)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, student := range students {
		if err := s.mailer.SendDailyDigest(student.Email, student.Name, todays.Text, todays.PublishDate); err == nil {
			sent++
		}
	}
	return sent, nil
}

// requireID rejects absent ids before parsing
func requireID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, &MissingFieldsError{Fields: []string{"id"}}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
