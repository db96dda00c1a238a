package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/pkg/auth"
	"github.com/freka11/schoolday/pkg/mailer"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	resetCodeLength        = 6
	resetCodeExpiryMinutes = 5
	resetCodeRateLimit     = 3 // max codes per hour
)

// ErrNotStudent is returned by the fail-closed resolver for student-only
// endpoints when the caller's role is anything but student
var ErrNotStudent = errors.New("session is not a student session")

// ErrNoSession covers absent, invalid, or expired credentials
var ErrNoSession = errors.New("no session")

// userStore is the slice of the user repository the auth service needs
type userStore interface {
	FindByID(id uuid.UUID) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	UpdatePassword(userID uuid.UUID, hashedPassword string) error
	AddDevice(userID uuid.UUID, token string, deviceType string) error
}

// resetCodeStore is the slice of the reset-code repository the auth service needs
type resetCodeStore interface {
	Create(code *model.PasswordResetCode) error
	FindValid(userID uuid.UUID, code string) (*model.PasswordResetCode, error)
	MarkAsUsed(id uuid.UUID) error
	InvalidateAllForUser(userID uuid.UUID) error
	CountRecent(userID uuid.UUID, since time.Time) (int64, error)
}

// passwordHasher abstracts bcrypt so service tests run without real hashing cost
type passwordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, password string) error
}

// AuthService owns login, session resolution, and password recovery
type AuthService struct {
	users      userStore
	resetCodes resetCodeStore
	hasher     passwordHasher
	jwtManager *auth.JWTManager
	mailer     *mailer.Mailer
	rdb        *redis.Client
}

func NewAuthService(
	users userStore,
	resetCodes resetCodeStore,
	hasher passwordHasher,
	jwtManager *auth.JWTManager,
	mailClient *mailer.Mailer,
	rdb *redis.Client,
) *AuthService {
	return &AuthService{
		users:      users,
		resetCodes: resetCodes,
		hasher:     hasher,
		jwtManager: jwtManager,
		mailer:     mailClient,
		rdb:        rdb,
	}
}

// ==================== Role resolution ====================

// ResolveRole applies the two-step role resolution: the email-domain
// heuristic supplies the default, and a profile with a valid role field
// overrides it. A nil profile (absent or lookup failed) degrades to the
// default rather than failing.
func ResolveRole(email string, profile *model.User) model.RoleResolution {
	resolution := model.RoleResolution{
		Role:   model.DefaultRoleForEmail(email),
		Source: model.RoleSourceDefault,
	}
	if profile != nil && profile.Role.IsValid() {
		resolution.Role = profile.Role
		resolution.Source = model.RoleSourceProfile
	}
	return resolution
}

// ResolveSession verifies a bearer credential and resolves the caller's
// identity and role. Profile lookup failures degrade to the email-derived
// default; an invalid credential is ErrNoSession.
func (s *AuthService) ResolveSession(tokenString string) (*model.SessionUser, error) {
	if tokenString == "" {
		return nil, ErrNoSession
	}

	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrNoSession
	}

	profile, err := s.users.FindByID(claims.UserID)
	if err != nil {
		profile = nil
	}

	resolution := ResolveRole(claims.Email, profile)

	name := claims.Name
	if profile != nil && profile.Name != "" {
		name = profile.Name
	}

	return &model.SessionUser{
		UID:         claims.UserID,
		Email:       claims.Email,
		Name:        name,
		Role:        resolution.Role,
		Permissions: model.PermissionsForRole(resolution.Role),
	}, nil
}

// ResolveStudentSession is the fail-closed variant for student-only
// endpoints: anything other than a resolved student role yields no session.
func (s *AuthService) ResolveStudentSession(tokenString string) (*model.SessionUser, error) {
	user, err := s.ResolveSession(tokenString)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	return user, nil
}

// ==================== Login / Logout ====================

// Login authenticates email/password and returns a bearer token
func (s *AuthService) Login(req model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		return nil, errors.New("invalid email or password")
	}

	if err := s.hasher.Compare(user.Password, req.Password); err != nil {
		return nil, errors.New("invalid email or password")
	}

	token, err := s.jwtManager.GenerateToken(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &model.LoginResponse{
		Token: token,
		User:  *user,
	}, nil
}

// Logout blacklists the token for its remaining lifetime. An invalid or
// expired credential is already unusable, so it counts as revoked.
func (s *AuthService) Logout(tokenString string) error {
	claims, err := s.jwtManager.ValidateToken(tokenString)
	if err != nil {
		return nil
	}

	expiresIn := time.Until(claims.ExpiresAt.Time)
	if expiresIn <= 0 {
		return nil
	}

	return s.rdb.Set(context.Background(), "blacklist:"+tokenString, "revoked", expiresIn).Err()
}

// ==================== Password recovery ====================

// ForgotPassword issues a reset code and mails it. The response never
// reveals whether the email exists.
func (s *AuthService) ForgotPassword(req model.ForgotPasswordRequest) (*model.ResetCodeSentResponse, error) {
	neutral := &model.ResetCodeSentResponse{
		Message:   "If the email exists, a reset code has been sent",
		Email:     req.Email,
		ExpiresIn: resetCodeExpiryMinutes * 60,
	}

	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		return neutral, nil
	}

	count, _ := s.resetCodes.CountRecent(user.ID, time.Now().Add(-1*time.Hour))
	if count >= int64(resetCodeRateLimit) {
		// A distinct error here would reveal that the account exists.
		// Stop issuing codes but keep the response indistinguishable.
		return neutral, nil
	}

	_ = s.resetCodes.InvalidateAllForUser(user.ID)

	code, err := generateNumericCode(resetCodeLength)
	if err != nil {
		return nil, errors.New("failed to generate reset code")
	}

	rc := &model.PasswordResetCode{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: time.Now().Add(resetCodeExpiryMinutes * time.Minute),
	}
	if err := s.resetCodes.Create(rc); err != nil {
		return nil, errors.New("failed to save reset code")
	}

	go func() {
		if s.mailer == nil {
			return
		}
		if err := s.mailer.SendPasswordReset(user.Email, user.Name, code, resetCodeExpiryMinutes); err != nil {
			log.Printf("❌ Failed to send reset email: %v", err)
		}
	}()

	return neutral, nil
}

// ResetPassword consumes a valid code and sets the new password
func (s *AuthService) ResetPassword(req model.ResetPasswordRequest) error {
	user, err := s.users.FindByEmail(req.Email)
	if err != nil {
		return errors.New("user not found")
	}

	rc, err := s.resetCodes.FindValid(user.ID, req.Code)
	if err != nil {
		return errors.New("invalid or expired reset code")
	}

	if err := s.resetCodes.MarkAsUsed(rc.ID); err != nil {
		return errors.New("failed to process reset code")
	}

	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return errors.New("failed to hash password")
	}

	return s.users.UpdatePassword(user.ID, hashed)
}

// RegisterDevice stores an FCM device token for push notifications
func (s *AuthService) RegisterDevice(userID uuid.UUID, req model.RegisterDeviceRequest) error {
	return s.users.AddDevice(userID, req.FCMToken, req.DeviceType)
}

// generateNumericCode generates a cryptographically secure random numeric code
func generateNumericCode(length int) (string, error) {
	code := ""
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code += fmt.Sprintf("%d", n.Int64())
	}
	return code, nil
}
