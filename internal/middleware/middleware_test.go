package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AayusX/Smart-Mavi-sub000/internal/models"
	appErrors "github.com/AayusX/Smart-Mavi-sub000/pkg/errors"
)

type validatorStub map[string]*models.JWTClaims

func (v validatorStub) ValidateToken(token string) (*models.JWTClaims, error) {
	claims, ok := v[token]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
	}
	return claims, nil
}

func newProtectedRouter(roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	tokens := validatorStub{
		"admin-token":   {UserID: "u-1", Role: models.RoleAdmin},
		"teacher-token": {UserID: "u-2", Role: models.RoleTeacher},
	}
	r := gin.New()
	r.GET("/protected", JWT(tokens), RequireRoles(roles...), func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.String(http.StatusOK, claims.UserID)
	})
	return r
}

func TestJWTAndRoles(t *testing.T) {
	r := newProtectedRouter(models.RoleAdmin, models.RoleSuperAdmin)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic admin-token", http.StatusUnauthorized},
		{"empty bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"role not allowed", "Bearer teacher-token", http.StatusForbidden},
		{"allowed", "bearer admin-token", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRolesWithoutJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken("Bearer  abc ")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = bearerToken("")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

type observation struct {
	method string
	path   string
	status int
}

type observerStub struct {
	seen []observation
}

func (o *observerStub) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	o.seen = append(o.seen, observation{method, path, status})
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	gin.SetMode(gin.TestMode)
	observer := &observerStub{}
	r := gin.New()
	r.Use(Metrics(observer))
	r.GET("/timetables/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/timetables/abc", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, observer.seen, 2)
	assert.Equal(t, observation{http.MethodGet, "/timetables/:id", http.StatusNoContent}, observer.seen[0])
	assert.Equal(t, observation{http.MethodGet, "unmatched", http.StatusNotFound}, observer.seen[1])
}
