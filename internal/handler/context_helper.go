package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AayusX/Smart-Mavi-sub000/internal/middleware"
	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorFromContext returns the caller's id and role, empty when anonymous.
func actorFromContext(c *gin.Context) (string, models.UserRole) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", ""
	}
	return claims.UserID, claims.Role
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
