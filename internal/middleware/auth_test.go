package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/equipskill/equipskill-dashboard/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tm *jwt.TokenManager, handlerCalled *bool) *gin.Engine {
	router := gin.New()
	router.Use(BearerAuthMiddleware(tm))
	router.GET("/test", func(c *gin.Context) {
		*handlerCalled = true
		c.String(http.StatusOK, UserID(c))
	})
	return router
}

func TestBearerAuthMiddleware_ValidToken(t *testing.T) {
	tm := jwt.NewTokenManager("secret", "equipskill", 1)
	token, err := tm.GenerateToken("u-42", "ada@example.com", "Ada", "both")
	require.NoError(t, err)

	called := false
	router := newAuthRouter(tm, &called)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-42", w.Body.String())
}

func TestBearerAuthMiddleware_Rejects(t *testing.T) {
	tm := jwt.NewTokenManager("secret", "equipskill", 1)
	other := jwt.NewTokenManager("other-secret", "equipskill", 1)
	forged, err := other.GenerateToken("u-42", "", "", "")
	require.NoError(t, err)
	expired, err := jwt.NewTokenManager("secret", "equipskill", -1).GenerateToken("u-42", "", "", "")
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "Missing authentication token"},
		{"wrong scheme", "Basic abc", "Missing authentication token"},
		{"empty bearer", "Bearer ", "Missing authentication token"},
		{"bad signature", "Bearer " + forged, "Invalid authentication token"},
		{"expired", "Bearer " + expired, "Session expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			router := newAuthRouter(tm, &called)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"success":false,"message":"`+tt.message+`"}`, w.Body.String())
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, ok := bearerToken("bearer  abc ")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = bearerToken("abc")
	assert.False(t, ok)
}

func TestBodySizeLimitMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(BodySizeLimitMiddleware(8))
	router.POST("/test", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("small")))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimiter_KeysByCaller(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rl := NewRateLimiter(ctx, rate.Limit(0.001), 1)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set(UserIDKey, id)
		}
	}, rl.Middleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(user string) int {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if user != "" {
			req.Header.Set("X-Test-User", user)
		}
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("u-1"))
	assert.Equal(t, http.StatusTooManyRequests, do("u-1"))
	assert.Equal(t, http.StatusOK, do("u-2"))
	assert.Equal(t, http.StatusOK, do(""))
	assert.Equal(t, http.StatusTooManyRequests, do(""))
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rl := NewRateLimiter(ctx, rate.Limit(1), 1)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }
	rl.getVisitor("u-1")

	now = now.Add(visitorIdleTTL + time.Second)
	rl.getVisitor("u-2")
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "u-1")
	assert.Contains(t, rl.visitors, "u-2")
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store, private", w.Header().Get("Cache-Control"))
}
