package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/pkg/auth"
)

type stubUserStore struct {
	byID    map[uuid.UUID]*model.User
	byEmail map[string]*model.User

	updatedPassword string
	devices         []string
}

func newStubUserStore(users ...*model.User) *stubUserStore {
	s := &stubUserStore{
		byID:    map[uuid.UUID]*model.User{},
		byEmail: map[string]*model.User{},
	}
	for _, u := range users {
		s.byID[u.ID] = u
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *stubUserStore) FindByID(id uuid.UUID) (*model.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (s *stubUserStore) FindByEmail(email string) (*model.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (s *stubUserStore) UpdatePassword(userID uuid.UUID, hashedPassword string) error {
	s.updatedPassword = hashedPassword
	return nil
}

func (s *stubUserStore) AddDevice(userID uuid.UUID, token string, deviceType string) error {
	s.devices = append(s.devices, token)
	return nil
}

type stubResetStore struct {
	codes  []*model.PasswordResetCode
	used   []uuid.UUID
	recent int64
}

func (s *stubResetStore) Create(code *model.PasswordResetCode) error {
	code.ID = uuid.New()
	s.codes = append(s.codes, code)
	return nil
}

func (s *stubResetStore) FindValid(userID uuid.UUID, code string) (*model.PasswordResetCode, error) {
	for _, rc := range s.codes {
		if rc.UserID == userID && rc.Code == code && rc.IsValid() {
			return rc, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubResetStore) MarkAsUsed(id uuid.UUID) error {
	s.used = append(s.used, id)
	return nil
}

func (s *stubResetStore) InvalidateAllForUser(userID uuid.UUID) error { return nil }

func (s *stubResetStore) CountRecent(userID uuid.UUID, since time.Time) (int64, error) {
	return s.recent, nil
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

func newAuthFixture(users ...*model.User) (*AuthService, *stubUserStore, *auth.JWTManager) {
	store := newStubUserStore(users...)
	manager := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(store, &stubResetStore{}, plainHasher{}, manager, nil, nil)
	return svc, store, manager
}

func TestResolveRoleDefaultFromEmailDomain(t *testing.T) {
	got := ResolveRole("teacher@admin.com", nil)
	if got.Role != model.RoleAdmin || got.Source != model.RoleSourceDefault {
		t.Fatalf("staff email resolved to %+v", got)
	}

	got = ResolveRole("kid@school.local", nil)
	if got.Role != model.RoleStudent || got.Source != model.RoleSourceDefault {
		t.Fatalf("student email resolved to %+v", got)
	}
}

func TestResolveRoleProfileOverridesDefault(t *testing.T) {
	// A student record on the staff domain wins over the heuristic
	profile := &model.User{Email: "intern@admin.com", Role: model.RoleStudent}
	got := ResolveRole("intern@admin.com", profile)
	if got.Role != model.RoleStudent || got.Source != model.RoleSourceProfile {
		t.Fatalf("profile override failed: %+v", got)
	}

	// And the reverse: an admin record on a student domain
	profile = &model.User{Email: "counselor@school.local", Role: model.RoleAdmin}
	got = ResolveRole("counselor@school.local", profile)
	if got.Role != model.RoleAdmin || got.Source != model.RoleSourceProfile {
		t.Fatalf("profile override failed: %+v", got)
	}
}

func TestResolveRoleIgnoresInvalidProfileRole(t *testing.T) {
	profile := &model.User{Email: "teacher@admin.com", Role: "janitor"}
	got := ResolveRole("teacher@admin.com", profile)
	if got.Role != model.RoleAdmin || got.Source != model.RoleSourceDefault {
		t.Fatalf("invalid profile role should fall back to default: %+v", got)
	}
}

func TestResolveSessionDegradesWhenProfileMissing(t *testing.T) {
	svc, _, manager := newAuthFixture() // empty store: every lookup fails

	token, err := manager.GenerateToken(uuid.New(), "teacher@admin.com", "Teacher")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	user, err := svc.ResolveSession(token)
	if err != nil {
		t.Fatalf("ResolveSession: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("degraded resolution role = %q, want admin", user.Role)
	}
	if !user.Permissions.Delete {
		t.Fatalf("admin session missing delete permission: %+v", user.Permissions)
	}
}

func TestResolveSessionRejectsBadToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	for _, token := range []string{"", "not-a-jwt"} {
		if _, err := svc.ResolveSession(token); !errors.Is(err, ErrNoSession) {
			t.Fatalf("token %q: expected ErrNoSession, got %v", token, err)
		}
	}
}

func TestResolveStudentSessionFailsClosed(t *testing.T) {
	adminUser := &model.User{ID: uuid.New(), Name: "Teacher", Email: "teacher@admin.com"}
	svc, _, manager := newAuthFixture(adminUser)

	token, _ := manager.GenerateToken(adminUser.ID, adminUser.Email, adminUser.Name)
	if _, err := svc.ResolveStudentSession(token); !errors.Is(err, ErrNotStudent) {
		t.Fatalf("expected ErrNotStudent for an admin session, got %v", err)
	}

	student := &model.User{ID: uuid.New(), Name: "Bart", Email: "bart@school.local", Role: model.RoleStudent}
	svc2, _, manager2 := newAuthFixture(student)
	token2, _ := manager2.GenerateToken(student.ID, student.Email, student.Name)
	user, err := svc2.ResolveStudentSession(token2)
	if err != nil {
		t.Fatalf("ResolveStudentSession: %v", err)
	}
	if user.Role != model.RoleStudent || user.Permissions.Delete {
		t.Fatalf("unexpected student session: %+v", user)
	}
}

func TestLoginVerifiesPassword(t *testing.T) {
	user := &model.User{ID: uuid.New(), Name: "Bart", Email: "bart@school.local", Password: "hashed:eatmyshorts"}
	svc, _, manager := newAuthFixture(user)

	if _, err := svc.Login(model.LoginRequest{Email: "bart@school.local", Password: "wrong"}); err == nil {
		t.Fatal("wrong password accepted")
	}

	resp, err := svc.Login(model.LoginRequest{Email: "bart@school.local", Password: "eatmyshorts"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	claims, err := manager.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token invalid: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email {
		t.Fatalf("claims don't match user: %+v", claims)
	}
}

func TestResetPasswordConsumesCode(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "bart@school.local"}
	store := newStubUserStore(user)
	resets := &stubResetStore{}
	resets.Create(&model.PasswordResetCode{
		UserID:    user.ID,
		Code:      "123456",
		ExpiresAt: time.Now().Add(5 * time.Minute),
	})
	svc := NewAuthService(store, resets, plainHasher{}, auth.NewJWTManager("test-secret", time.Hour), nil, nil)

	if err := svc.ResetPassword(model.ResetPasswordRequest{Email: user.Email, Code: "999999", NewPassword: "newpass1"}); err == nil {
		t.Fatal("wrong code accepted")
	}

	if err := svc.ResetPassword(model.ResetPasswordRequest{Email: user.Email, Code: "123456", NewPassword: "newpass1"}); err != nil {
		t.Fatalf("ResetPassword: %v", err)
	}
	if store.updatedPassword != "hashed:newpass1" {
		t.Fatalf("password not updated: %q", store.updatedPassword)
	}
	if len(resets.used) != 1 {
		t.Fatalf("reset code not marked used")
	}
}

func TestGenerateNumericCodeShape(t *testing.T) {
	code, err := generateNumericCode(6)
	if err != nil {
		t.Fatalf("generateNumericCode: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("code length %d, want 6", len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("non-digit in code: %q", code)
		}
	}
}

func TestLogoutTreatsInvalidTokenAsRevoked(t *testing.T) {
	svc, _, _ := newAuthFixture()

	if err := svc.Logout("not-a-token"); err != nil {
		t.Fatalf("Logout with garbage token: %v", err)
	}

	expiredManager := auth.NewJWTManager("test-secret", -time.Minute)
	expired, err := expiredManager.GenerateToken(uuid.New(), "bart@school.local", "Bart")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if err := svc.Logout(expired); err != nil {
		t.Fatalf("Logout with expired token: %v", err)
	}
}

func TestForgotPasswordRateLimitStaysNeutral(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "bart@school.local", Name: "Bart"}
	store := newStubUserStore(user)
	resets := &stubResetStore{recent: 3}
	manager := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(store, resets, plainHasher{}, manager, nil, nil)

	limited, err := svc.ForgotPassword(model.ForgotPasswordRequest{Email: user.Email})
	if err != nil {
		t.Fatalf("rate-limited request errored: %v", err)
	}
	if len(resets.codes) != 0 {
		t.Fatal("rate-limited request must not issue a new code")
	}

	unknown, err := svc.ForgotPassword(model.ForgotPasswordRequest{Email: "nobody@school.local"})
	if err != nil {
		t.Fatalf("unknown-email request errored: %v", err)
	}

	// The two responses must be indistinguishable, or the limit leaks
	// which accounts exist.
	if limited.Message != unknown.Message || limited.ExpiresIn != unknown.ExpiresIn {
		t.Fatalf("responses differ: %+v vs %+v", limited, unknown)
	}
}
