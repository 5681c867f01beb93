package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studylane/examboard-api/internal/models"
	appErrors "github.com/studylane/examboard-api/pkg/errors"
	"github.com/studylane/examboard-api/pkg/response"
)

// RequireRoles enforces role-based access control for routes. Fine-grained
// checks (department isolation) live in the access guard; this middleware
// only gates whole route groups by role.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrPermissionDenied)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CallerID extracts the authenticated user id from the gin context.
func CallerID(c *gin.Context) string {
	claimsValue, exists := c.Get(ContextUserKey)
	if !exists {
		return ""
	}
	claims, ok := claimsValue.(*models.JWTClaims)
	if !ok {
		return ""
	}
	return claims.UserID
}
