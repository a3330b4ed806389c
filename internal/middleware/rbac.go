package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
	"github.com/AayusX/Smart-Mavi-sub000/pkg/response"
)

// RequireRoles lets the request through only when the authenticated user
// holds one of the roles. It must run after JWT.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		claims, ok := claimsValue.(*models.JWTClaims)
		if !exists || !ok || claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
