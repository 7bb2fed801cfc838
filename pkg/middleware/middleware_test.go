package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Abhishek5chawan/WhisperLink/internal/model"
	"github.com/Abhishek5chawan/WhisperLink/internal/store"
	"github.com/Abhishek5chawan/WhisperLink/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore only answers FindByID, the rest of the interface panics if used
type fakeStore struct {
	store.Store
	users map[string]*model.User
	err   error
}

func (f *fakeStore) FindByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}

	u, ok := f.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	return u, nil
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.Use(mw...)

	h := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":   c.GetString("userID"),
			"username": c.GetString("username"),
		})
	}

	r.GET("/", h)
	r.POST("/", h)

	return r
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(NewRequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.MustGet("requestID").(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))
}

func TestJWTMiddleware(t *testing.T) {
	sessions := security.NewSessions("secret", time.Hour)
	fs := &fakeStore{users: map[string]*model.User{
		"u1": {ID: "u1", Username: "alice"},
	}}

	r := newEngine(NewJWTMiddleware(sessions, fs))

	valid, err := sessions.Issue("u1", "alice")
	require.NoError(t, err)

	gone, err := sessions.Issue("u2", "bob")
	require.NoError(t, err)

	expired, err := security.NewSessions("secret", -time.Minute).Issue("u1", "alice")
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(req *http.Request)
		status int
		msg    string
	}{
		{"no token", func(req *http.Request) {}, http.StatusUnauthorized, "Not authenticated"},
		{"cookie", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: valid})
		}, http.StatusOK, ""},
		{"bearer", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer "+valid)
		}, http.StatusOK, ""},
		{"garbage", func(req *http.Request) {
			req.Header.Set("Authorization", "Bearer nope")
		}, http.StatusUnauthorized, "Session invalid"},
		{"expired", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: expired})
		}, http.StatusUnauthorized, "Session expired"},
		{"deleted user", func(req *http.Request) {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: gone})
		}, http.StatusNotFound, "User not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())

			if tt.status == http.StatusOK {
				assert.JSONEq(t, `{"userID":"u1","username":"alice"}`, w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), tt.msg)
			}
		})
	}
}

func TestJWTMiddlewareStoreError(t *testing.T) {
	sessions := security.NewSessions("secret", time.Hour)
	r := newEngine(NewJWTMiddleware(sessions, &fakeStore{err: errors.New("db down")}))

	tok, err := sessions.Issue("u1", "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRateLimiter(t *testing.T) {
	r := newEngine(RateLimiterMiddleware(RateLimiterConfig{
		RequestsPerSecond: 1,
		Burst:             2,
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))

	// Other clients have their own bucket
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
}

func TestRateLimiterDisabled(t *testing.T) {
	r := newEngine(RateLimiterMiddleware(RateLimiterConfig{}))

	for i := 0; i < 20; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestBodySizeLimiter(t *testing.T) {
	r := gin.New()
	r.Use(BodySizeLimiter(16))
	r.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}

		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"`+strings.Repeat("x", 64)+`"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestTurnstileDisabled(t *testing.T) {
	r := newEngine(NewTurnstileMiddleware(""))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTurnstileMissingToken(t *testing.T) {
	r := newEngine(NewTurnstileMiddleware("secret"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
