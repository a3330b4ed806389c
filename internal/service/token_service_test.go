package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

func claimsFor(role models.UserRole, ttl time.Duration) *models.JWTClaims {
	now := time.Now()
	return &models.JWTClaims{
		UserID: "user-1",
		Role:   role,
		Email:  "admin@school.test",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

func TestTokenServiceValidateToken(t *testing.T) {
	svc := NewTokenService("secret")
	token, err := svc.SignToken(claimsFor(models.RoleAdmin, time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("secret")

	expired, err := svc.SignToken(claimsFor(models.RoleAdmin, -time.Minute))
	require.NoError(t, err)
	foreign, err := NewTokenService("other").SignToken(claimsFor(models.RoleAdmin, time.Hour))
	require.NoError(t, err)
	unknownRole, err := svc.SignToken(claimsFor(models.UserRole("STUDENT"), time.Hour))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claimsFor(models.RoleAdmin, time.Hour)).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"unknown role": unknownRole,
		"alg none":     none,
		"garbage":      "not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
		})
	}
}
