package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cabin-roster/backend/config"
	"cabin-roster/backend/pkg/jwt"
	"cabin-roster/backend/pkg/redis"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redis.Wrap(rdb, zap.NewNop())
}

func newJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: 15 * time.Minute})
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newJWT()
	rdb := newRedis(t)

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, rdb), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("operator")+"|"+c.GetString("token_jti"))
	})

	token, err := mgr.GenerateAccessToken("Supervisor")
	require.NoError(t, err)
	claims, err := mgr.ParseToken(token)
	require.NoError(t, err)

	do := func(header string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, do("").Code)
	assert.Equal(t, http.StatusUnauthorized, do("Token "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, do("Bearer not-a-jwt").Code)

	w := do("Bearer " + token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Supervisor|"+claims.ID, w.Body.String())

	require.NoError(t, rdb.BlacklistToken(context.Background(), claims.ID, time.Minute))
	assert.Equal(t, http.StatusUnauthorized, do("Bearer "+token).Code, "注销后的 Token 应被拒绝")
}

func TestJWTAuth_WithoutRedis(t *testing.T) {
	mgr := newJWT()
	token, err := mgr.GenerateAccessToken("")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil), func(c *gin.Context) {
		_, ok := c.Get("token_exp")
		assert.True(t, ok)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	rdb := newRedis(t)

	r := gin.New()
	r.POST("/assignments", func(c *gin.Context) {
		c.Set("operator", c.GetHeader("X-Operator"))
		c.Next()
	}, RateLimit(rdb, "generate", 2, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	post := func(operator string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("POST", "/assignments", nil)
		req.Header.Set("X-Operator", operator)
		r.ServeHTTP(w, req)
		return w
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, post("Supervisor").Code)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)

	w := post("Supervisor")
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusCreated, post("Night Shift").Code, "不同操作员分别计数")
	assert.Equal(t, http.StatusCreated, post("").Code, "未填写姓名时按 IP 计数")
}

func TestRateLimitKey(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/assignments", nil)
	c.Request.RemoteAddr = "10.0.0.7:5555"

	assert.Equal(t, "rate_limit:generate:ip:10.0.0.7", rateLimitKey(c, "generate"))

	c.Set("operator", "Supervisor")
	assert.Equal(t, "rate_limit:generate:op:Supervisor", rateLimitKey(c, "generate"))
}

func TestRateLimit_Disabled(t *testing.T) {
	for _, mw := range []gin.HandlerFunc{
		RateLimit(nil, "generate", 1, time.Minute),
		RateLimit(newRedis(t), "generate", 0, time.Minute),
	} {
		r := gin.New()
		r.POST("/assignments", mw, func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("POST", "/assignments", nil))
			assert.Equal(t, http.StatusCreated, w.Code)
		}
	}
}

// ── RequestID / BodyLimit / CORS ──

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/ping", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", requestIDMaxLen+1))
	r.ServeHTTP(w, req)
	assert.Len(t, w.Body.String(), 36, "过长的 ID 应替换为 UUID")
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8))
	r.POST("/echo", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/echo", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/echo", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(method, origin, requestMethod string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/x", nil)
		req.Header.Set("Origin", origin)
		if requestMethod != "" {
			req.Header.Set("Access-Control-Request-Method", requestMethod)
		}
		r.ServeHTTP(w, req)
		return w
	}

	w := do("OPTIONS", "http://localhost:5173", "GET")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")

	w = do("OPTIONS", "http://evil.example", "GET")
	assert.Equal(t, http.StatusForbidden, w.Code, "未知来源的预检请求应被拒绝")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = do("GET", "http://localhost:5173", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Content-Disposition, X-Request-ID", w.Header().Get("Access-Control-Expose-Headers"))
	assert.Equal(t, "Origin", w.Header().Get("Vary"))

	w = do("GET", "http://evil.example", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))

	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", w.Header().Get("Content-Security-Policy"))
}
