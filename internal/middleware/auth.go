package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/freka11/schoolday/internal/model"
	"github.com/freka11/schoolday/internal/service"
)

// Context keys for the resolved session
const (
	CtxSessionUser = "session_user"
	CtxToken       = "session_token"
)

// Login paths the portals redirect to when a guard rejects the request
const (
	AdminLoginPath   = "/admin/login"
	StudentLoginPath = "/user/login"
)

// ExtractToken pulls the bearer credential from the session cookie, falling
// back to the Authorization header for API clients
func ExtractToken(c *gin.Context, cookieName string) string {
	if token, err := c.Cookie(cookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// SessionAuth resolves the caller's session and injects it into the gin
// context. Revoked tokens are rejected via the Redis blacklist.
func SessionAuth(authService *service.AuthService, rdb *redis.Client, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c, cookieName)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authentication required"})
			return
		}

		// Check blacklist
		exists, err := rdb.Exists(context.Background(), "blacklist:"+tokenString).Result()
		if err != nil {
			// Fail closed on auth infrastructure errors
			c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{Error: "auth server error"})
			return
		}
		if exists > 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "session has been revoked"})
			return
		}

		user, err := authService.ResolveSession(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{Error: "invalid or expired session"})
			return
		}

		c.Set(CtxSessionUser, user)
		c.Set(CtxToken, tokenString)

		c.Next()
	}
}

// RequireRole guards a portal's routes: a session with any other role is
// rejected with the portal's login redirect target.
func RequireRole(role model.Role, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := SessionFrom(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
				Error:    "authentication required",
				Redirect: loginPath,
			})
			return
		}
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, model.ErrorResponse{
				Error:    "insufficient permissions",
				Redirect: loginPath,
			})
			return
		}
		c.Next()
	}
}

// RequireStudent guards the student portal through the fail-closed
// resolver: the credential is re-resolved and anything that does not come
// back as a student session is rejected with the student login redirect.
func RequireStudent(authService *service.AuthService, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetString(CtxToken)
		user, err := authService.ResolveStudentSession(tokenString)
		if err != nil {
			status := http.StatusUnauthorized
			if errors.Is(err, service.ErrNotStudent) {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, model.ErrorResponse{
				Error:    "student session required",
				Redirect: loginPath,
			})
			return
		}
		c.Set(CtxSessionUser, user)
		c.Next()
	}
}

// SessionFrom returns the resolved session user, or nil when the request
// did not pass SessionAuth
func SessionFrom(c *gin.Context) *model.SessionUser {
	v, ok := c.Get(CtxSessionUser)
	if !ok {
		return nil
	}
	user, ok := v.(*model.SessionUser)
	if !ok {
		return nil
	}
	return user
}
