package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/devhire/project-marketplace-api/internal/errors"
	"github.com/devhire/project-marketplace-api/internal/models"
)

// RequireRole enforces that the authenticated caller holds one of the given
// roles. This is the role gate only; whether the caller may act on a specific
// project or task is checked later by the services against the owning or
// assigned user.
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !allowed[role] {
			apierrors.Forbidden(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}
