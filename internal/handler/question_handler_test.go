package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/freka11/schoolday/internal/middleware"
	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/service"
)

type stubQuestionStore struct {
	questions []*model.Question
	fail      bool
}

func (s *stubQuestionStore) Create(q *model.Question) error {
	if s.fail {
		return errors.New("store down")
	}
	q.ID = uuid.New()
	s.questions = append(s.questions, q)
	return nil
}

func (s *stubQuestionStore) FindByID(id uuid.UUID) (*model.Question, error) {
	for _, q := range s.questions {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubQuestionStore) ListAll() ([]model.Question, error) {
	if s.fail {
		return nil, errors.New("store down")
	}
	var out []model.Question
	for _, q := range s.questions {
		out = append(out, *q)
	}
	return out, nil
}

func (s *stubQuestionStore) ListByDate(date string) ([]model.Question, error) {
	if s.fail {
		return nil, errors.New("store down")
	}
	var out []model.Question
	for _, q := range s.questions {
		if q.PublishDate == date {
			out = append(out, *q)
		}
	}
	return out, nil
}

func (s *stubQuestionStore) Update(id uuid.UUID, text string, status model.ContentStatus) error {
	return nil
}

func (s *stubQuestionStore) Patch(id uuid.UUID, fields map[string]interface{}) error { return nil }

func (s *stubQuestionStore) Delete(id uuid.UUID) error {
	if s.fail {
		return errors.New("store down")
	}
	for i, q := range s.questions {
		if q.ID == id {
			s.questions = append(s.questions[:i], s.questions[i+1:]...)
			return nil
		}
	}
	return nil
}

type noopThoughtStore struct{}

func (noopThoughtStore) Create(t *model.Thought) error                 { return nil }
func (noopThoughtStore) ListAll() ([]model.Thought, error)             { return nil, nil }
func (noopThoughtStore) ListByDate(string) ([]model.Thought, error)    { return nil, nil }
func (noopThoughtStore) Update(uuid.UUID, string, model.ContentStatus) error { return nil }
func (noopThoughtStore) Patch(uuid.UUID, map[string]interface{}) error { return nil }
func (noopThoughtStore) Delete(uuid.UUID) error                        { return nil }

type noopAnswerStore struct{}

func (noopAnswerStore) Create(a *model.Answer) error              { return nil }
func (noopAnswerStore) ListAll() ([]model.Answer, error)          { return nil, nil }
func (noopAnswerStore) ListByDate(string) ([]model.Answer, error) { return nil, nil }
func (noopAnswerStore) Delete(uuid.UUID) error                    { return nil }

type noopStreakStore struct{}

func (noopStreakStore) Find(uuid.UUID) (*model.Streak, error) { return nil, errors.New("not found") }
func (noopStreakStore) Upsert(*model.Streak) error            { return nil }

type noopStudentLister struct{}

func (noopStudentLister) ListByRole(model.Role) ([]model.User, error) { return nil, nil }

// withSession injects a resolved admin session the way SessionAuth would
func withSession(user model.SessionUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxSessionUser, &user)
		c.Next()
	}
}

func newQuestionRouter(store *stubQuestionStore, session *model.SessionUser) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := service.NewContentService(store, noopThoughtStore{}, noopAnswerStore{}, noopStreakStore{}, noopStudentLister{}, nil)
	h := NewContentHandler(svc)

	router := gin.New()
	group := router.Group("/api/admin")
	if session != nil {
		group.Use(withSession(*session))
	}
	group.Use(middleware.RequireRole(model.RoleAdmin, middleware.AdminLoginPath))
	group.GET("/questions", h.GetQuestions)
	group.POST("/questions", h.CreateQuestion)
	group.DELETE("/questions", h.DeleteQuestion)
	group.POST("/questions/bulk", h.BulkCreateQuestions)
	return router
}

func adminSession() *model.SessionUser {
	return &model.SessionUser{
		UID:         uuid.New(),
		Email:       "principal@admin.com",
		Name:        "Principal",
		Role:        model.RoleAdmin,
		Permissions: model.PermissionsForRole(model.RoleAdmin),
	}
}

func TestGetQuestionsWithoutSessionRedirectsToLogin(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/questions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Redirect != middleware.AdminLoginPath {
		t.Fatalf("redirect = %q, want %q", resp.Redirect, middleware.AdminLoginPath)
	}
}

func TestGetQuestionsStudentSessionForbidden(t *testing.T) {
	student := &model.SessionUser{
		UID:         uuid.New(),
		Email:       "bart@school.local",
		Role:        model.RoleStudent,
		Permissions: model.PermissionsForRole(model.RoleStudent),
	}
	router := newQuestionRouter(&stubQuestionStore{}, student)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/questions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestGetQuestionsEmptyStoreReturnsEmptyArray(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{}, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/questions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Fatalf("body = %q, want empty JSON array", got)
	}
}

func TestGetQuestionsStoreFailureYields500WithEmptyArray(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{fail: true}, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/questions?date=all", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if got := w.Body.String(); got != "[]" {
		t.Fatalf("body = %q, want empty JSON array", got)
	}
}

func TestCreateQuestionStampsCreatorAndReturnsID(t *testing.T) {
	store := &stubQuestionStore{}
	session := adminSession()
	router := newQuestionRouter(store, session)

	body, _ := json.Marshal(model.CreateQuestionRequest{Question: "What did you read today?"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/questions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", w.Code, w.Body.String())
	}

	var resp model.CreatedResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if !resp.Success || resp.ID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	if len(store.questions) != 1 {
		t.Fatalf("expected 1 stored question, got %d", len(store.questions))
	}
	if store.questions[0].CreatedByID != session.UID || store.questions[0].CreatedByName != "Principal" {
		t.Fatalf("creator not stamped: %+v", store.questions[0])
	}
}

func TestCreateQuestionMissingTextNamesField(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{}, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/questions", bytes.NewReader([]byte(`{"status":"published"}`)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Error != "missing required fields: question" {
		t.Fatalf("error = %q, want it to name the missing field", resp.Error)
	}
}

func TestBulkCreateQuestionsPartialFailure(t *testing.T) {
	store := &stubQuestionStore{}
	router := newQuestionRouter(store, adminSession())

	body, _ := json.Marshal(model.BulkQuestionsRequest{
		Questions: []model.CreateQuestionRequest{
			{Question: "first"},
			{Question: "   "}, // missing text fails validation
			{Question: "third"},
		},
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/admin/questions/bulk", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusMultiStatus {
		t.Fatalf("status = %d, want 207", w.Code)
	}

	var resp model.BulkQuestionsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.Success {
		t.Fatal("batch with a failed item reported success")
	}
	if len(resp.Results) != 3 || !resp.Results[0].Success || resp.Results[1].Success || !resp.Results[2].Success {
		t.Fatalf("per-item results wrong: %+v", resp.Results)
	}
	if len(store.questions) != 2 {
		t.Fatalf("expected the 2 valid questions persisted, got %d", len(store.questions))
	}
}

func TestDeleteQuestionStoreFailureIsServerError(t *testing.T) {
	store := &stubQuestionStore{fail: true}
	router := newQuestionRouter(store, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/questions?id="+uuid.NewString(), nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for a store failure", w.Code)
	}
}

func TestDeleteQuestionWithoutIDRejected(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{}, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/questions", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 without an id", w.Code)
	}
	var resp model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad error body: %v", err)
	}
	if resp.Error != "missing required fields: id" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestDeleteQuestionMalformedIDRejected(t *testing.T) {
	router := newQuestionRouter(&stubQuestionStore{}, adminSession())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/admin/questions?id=not-a-uuid", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for a malformed id", w.Code)
	}
}
