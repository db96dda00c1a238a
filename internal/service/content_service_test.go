package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/freka11/schoolday/internal/model"
)

type memQuestionStore struct {
	questions []*model.Question
	failOn    string // question text that makes Create fail
}

func (s *memQuestionStore) Create(q *model.Question) error {
	if s.failOn != "" && q.Text == s.failOn {
		return errors.New("store write failed")
	}
	q.ID = uuid.New()
	s.questions = append(s.questions, q)
	return nil
}

func (s *memQuestionStore) FindByID(id uuid.UUID) (*model.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *memQuestionStore) ListAll() ([]model.Question, error) {
	var out []model.Question
	for _, q := range s.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (s *memQuestionStore) ListByDate(date string) ([]model.Question, error) {
	var out []model.Question
	for _, q := range s.questions {
		if q.PublishDate == date {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *memQuestionStore) Update(id uuid.UUID, text string, status model.ContentStatus) error {
	q, err := s.FindByID(id)
	if err != nil {
		return err
	}
	q.Text = text
	q.Status = status
	return nil
}

func (s *memQuestionStore) Patch(id uuid.UUID, fields map[string]interface{}) error {
	q, err := s.FindByID(id)
	if err != nil {
		return err
	}
	if disabled, ok := fields["disabled"].(bool); ok {
		q.Disabled = disabled
	}
	return nil
}

func (s *memQuestionStore) Delete(id uuid.UUID) error {
	for i, q := range s.questions {
		if q.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memThoughtStore struct {
	thoughts []*model.Thought
}

func (s *memThoughtStore) Create(t *model.Thought) error {
	t.ID = uuid.New()
	s.thoughts = append(s.thoughts, t)
	return nil
}

func (s *memThoughtStore) ListAll() ([]model.Thought, error) {
	var out []model.Thought
	for _, t := range s.thoughts {
		out = append(out, *t)
	}
	return out, nil
}

func (s *memThoughtStore) ListByDate(date string) ([]model.Thought, error) {
	var out []model.Thought
	for _, t := range s.thoughts {
		if t.PublishDate == date {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memThoughtStore) Update(id uuid.UUID, text string, status model.ContentStatus) error {
	for _, t := range s.thoughts {
		if t.ID == id {
			t.Text = text
			t.Status = status
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memThoughtStore) Patch(id uuid.UUID, fields map[string]interface{}) error {
	for _, t := range s.thoughts {
		if t.ID == id {
			if disabled, ok := fields["disabled"].(bool); ok {
				t.Disabled = disabled
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *memThoughtStore) Delete(id uuid.UUID) error {
	for i, t := range s.thoughts {
		if t.ID == id {
			s.thoughts = append(s.thoughts[:i], s.thoughts[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memAnswerStore struct {
	answers []*model.Answer
}

func (s *memAnswerStore) Create(a *model.Answer) error {
	a.ID = uuid.New()
	s.answers = append(s.answers, a)
	return nil
}

func (s *memAnswerStore) ListAll() ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range s.answers {
		out = append(out, *a)
	}
	return out, nil
}

func (s *memAnswerStore) ListByDate(date string) ([]model.Answer, error) {
	var out []model.Answer
	for _, a := range s.answers {
		if a.SubmittedAt.UTC().Format(model.DateLayout) == date {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *memAnswerStore) Delete(id uuid.UUID) error {
	for i, a := range s.answers {
		if a.ID == id {
			s.answers = append(s.answers[:i], s.answers[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type memStreakStore struct {
	streaks map[uuid.UUID]*model.Streak
}

func (s *memStreakStore) Find(studentID uuid.UUID) (*model.Streak, error) {
	streak, ok := s.streaks[studentID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return streak, nil
}

func (s *memStreakStore) Upsert(streak *model.Streak) error {
	s.streaks[streak.StudentID] = streak
	return nil
}

type memStudentLister struct {
	students []model.User
}

func (s *memStudentLister) ListByRole(role model.Role) ([]model.User, error) {
	return s.students, nil
}

func newContentFixture() (*ContentService, *memQuestionStore, *memAnswerStore, *memStreakStore) {
	questions := &memQuestionStore{}
	answers := &memAnswerStore{}
	streaks := &memStreakStore{streaks: map[uuid.UUID]*model.Streak{}}
	svc := NewContentService(questions, &memThoughtStore{}, answers, streaks, &memStudentLister{}, nil)
	svc.today = func() string { return "2026-03-10" }
	return svc, questions, answers, streaks
}

func admin() model.SessionUser {
	return model.SessionUser{UID: uuid.New(), Name: "Principal", Role: model.RoleAdmin}
}

func TestListQuestionsPartitionsByToday(t *testing.T) {
	svc, _, _, _ := newContentFixture()
	creator := admin()

	if _, err := svc.CreateQuestion(model.CreateQuestionRequest{Question: "today's"}, creator); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}
	if _, err := svc.CreateQuestion(model.CreateQuestionRequest{Question: "yesterday's", PublishDate: "2026-03-09"}, creator); err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	todays, err := svc.ListQuestions("")
	if err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if len(todays) != 1 || todays[0].Text != "today's" {
		t.Fatalf("today partition wrong: %+v", todays)
	}

	all, err := svc.ListQuestions(ListScopeAll)
	if err != nil {
		t.Fatalf("ListQuestions all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("full history has %d items, want 2", len(all))
	}
}

func TestCreateQuestionDefaults(t *testing.T) {
	svc, questions, _, _ := newContentFixture()

	id, err := svc.CreateQuestion(model.CreateQuestionRequest{Question: "  why?  "}, admin())
	if err != nil {
		t.Fatalf("CreateQuestion: %v", err)
	}

	stored, err := questions.FindByID(id)
	if err != nil {
		t.Fatalf("created question not stored: %v", err)
	}
	if stored.Text != "why?" {
		t.Fatalf("text not trimmed: %q", stored.Text)
	}
	if stored.Status != model.ContentStatusPublished {
		t.Fatalf("default status = %q, want published", stored.Status)
	}
	if stored.PublishDate != "2026-03-10" {
		t.Fatalf("default publish date = %q, want today", stored.PublishDate)
	}
}

func TestCreateQuestionNamesMissingField(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	_, err := svc.CreateQuestion(model.CreateQuestionRequest{Question: "   "}, admin())
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if len(missing.Fields) != 1 || missing.Fields[0] != "question" {
		t.Fatalf("wrong fields named: %v", missing.Fields)
	}
}

func TestPatchQuestionTogglesDisabledOnly(t *testing.T) {
	svc, questions, _, _ := newContentFixture()

	id, _ := svc.CreateQuestion(model.CreateQuestionRequest{Question: "keep my text", Status: model.ContentStatusDraft}, admin())

	disabled := true
	if err := svc.PatchQuestion(id.String(), model.PatchContentRequest{Disabled: &disabled}); err != nil {
		t.Fatalf("PatchQuestion: %v", err)
	}

	stored, _ := questions.FindByID(id)
	if !stored.Disabled {
		t.Fatal("disabled flag not set")
	}
	if stored.Text != "keep my text" || stored.Status != model.ContentStatusDraft {
		t.Fatalf("patch touched other fields: %+v", stored)
	}
}

func TestPatchQuestionWithoutFieldsFails(t *testing.T) {
	svc, _, _, _ := newContentFixture()
	id, _ := svc.CreateQuestion(model.CreateQuestionRequest{Question: "q"}, admin())

	var missing *MissingFieldsError
	if err := svc.PatchQuestion(id.String(), model.PatchContentRequest{}); !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
}

func TestDeleteQuestionRemovesFromListing(t *testing.T) {
	svc, _, _, _ := newContentFixture()
	id, _ := svc.CreateQuestion(model.CreateQuestionRequest{Question: "to delete"}, admin())

	if err := svc.DeleteQuestion(id.String()); err != nil {
		t.Fatalf("DeleteQuestion: %v", err)
	}

	all, _ := svc.ListQuestions(ListScopeAll)
	if len(all) != 0 {
		t.Fatalf("question still listed after delete: %+v", all)
	}

	if err := svc.DeleteQuestion(""); err == nil {
		t.Fatal("empty id should be rejected")
	}
}

func TestBulkCreateQuestionsReportsPerItemResults(t *testing.T) {
	svc, questions, _, _ := newContentFixture()
	questions.failOn = "breaks"

	resp := svc.BulkCreateQuestions(model.BulkQuestionsRequest{
		Questions: []model.CreateQuestionRequest{
			{Question: "first"},
			{Question: "breaks"},
			{Question: "third"},
		},
	}, admin())

	if resp.Success {
		t.Fatal("batch with a failure reported success")
	}
	if len(resp.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(resp.Results))
	}
	if !resp.Results[0].Success || resp.Results[1].Success || !resp.Results[2].Success {
		t.Fatalf("per-item outcomes wrong: %+v", resp.Results)
	}

	// No rollback: items around the failure stay written
	all, _ := svc.ListQuestions(ListScopeAll)
	if len(all) != 2 {
		t.Fatalf("expected 2 persisted questions, got %d", len(all))
	}
}

func TestCreateAnswerNamesAllMissingFields(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	_, err := svc.CreateAnswer(model.CreateAnswerRequest{})
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	want := []string{"studentId", "studentName", "questionId", "answer"}
	if len(missing.Fields) != len(want) {
		t.Fatalf("fields named %v, want %v", missing.Fields, want)
	}
	for i, f := range want {
		if missing.Fields[i] != f {
			t.Fatalf("fields named %v, want %v", missing.Fields, want)
		}
	}
}

func TestCreateAnswerAdvancesStreak(t *testing.T) {
	svc, _, answers, streaks := newContentFixture()
	studentID := uuid.New()

	submit := func() {
		_, err := svc.CreateAnswer(model.CreateAnswerRequest{
			StudentID:   studentID.String(),
			StudentName: "Bart",
			QuestionID:  uuid.New().String(),
			Answer:      "cowabunga",
		})
		if err != nil {
			t.Fatalf("CreateAnswer: %v", err)
		}
	}

	submit()
	if got := streaks.streaks[studentID].StreakCount; got != 1 {
		t.Fatalf("streak after first answer = %d, want 1", got)
	}

	// Second answer the same day leaves the streak alone
	submit()
	if got := streaks.streaks[studentID].StreakCount; got != 1 {
		t.Fatalf("streak after same-day answer = %d, want 1", got)
	}

	// Next calendar day increments
	svc.today = func() string { return "2026-03-11" }
	submit()
	if got := streaks.streaks[studentID].StreakCount; got != 2 {
		t.Fatalf("streak after consecutive day = %d, want 2", got)
	}

	// A gap resets to 1
	svc.today = func() string { return "2026-03-20" }
	submit()
	if got := streaks.streaks[studentID].StreakCount; got != 1 {
		t.Fatalf("streak after gap = %d, want 1", got)
	}

	if len(answers.answers) != 4 {
		t.Fatalf("expected 4 stored answers, got %d", len(answers.answers))
	}
}

func TestGetStreakZeroValuedWhenAbsent(t *testing.T) {
	svc, _, _, _ := newContentFixture()
	studentID := uuid.New()

	streak, err := svc.GetStreak(studentID)
	if err != nil {
		t.Fatalf("GetStreak: %v", err)
	}
	if streak.StudentID != studentID || streak.StreakCount != 0 || streak.LastAnsweredDate != nil {
		t.Fatalf("expected zero-valued streak, got %+v", streak)
	}
}

func TestSendDailyDigestRequiresMailer(t *testing.T) {
	svc, _, _, _ := newContentFixture()

	if _, err := svc.SendDailyDigest(); err == nil {
		t.Fatal("expected error without a configured mailer")
	}
}
