package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/wardtrack/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenValidator turns a bearer access token into the acting employee.
type TokenValidator interface {
	ValidateAccessToken(token string) (domain.Identity, error)
}

// Authenticate requires a valid bearer access token and stores the identity,
// stamped with the client IP and request ID, on the context.
func Authenticate(v TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		id, err := v.ValidateAccessToken(strings.TrimSpace(token))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		id.IPAddress = c.ClientIP()
		id.RequestID = GetRequestID(c)
		c.Set(identityKey, id)
		c.Next()
	}
}

// AdminChecker reports an employee's current role. Tokens carry the role at
// issue time, so admin routes confirm it against the store.
type AdminChecker interface {
	IsAdmin(ctx context.Context, employeeID uuid.UUID) (bool, error)
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(checker AdminChecker, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetIdentity(c)
		if !ok || !id.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		admin, err := checker.IsAdmin(c.Request.Context(), id.EmployeeID)
		if err != nil {
			log.Error("checking admin role",
				zap.String("employee_code", id.EmployeeCode),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if !admin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

func GetIdentity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}
