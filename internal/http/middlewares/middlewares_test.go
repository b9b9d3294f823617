package middlewares_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fitlistic/fitlistic/internal/auth"
	"github.com/fitlistic/fitlistic/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-at-least-32-characters-long"

func authedRouter(m *middlewares.AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.GET("/v1/me", m.RequireAuth(), func(c *gin.Context) {
		id, _ := middlewares.UserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewManager(testSecret, 15*time.Minute, 7*24*time.Hour)

	validToken, err := manager.GenerateAccessToken("user-1", "flexibella", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	refreshToken, _, _, err := manager.GenerateRefreshToken("user-1", "flexibella", "user")
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{name: "valid_token", header: "Bearer " + validToken, wantStatusCode: http.StatusOK},
		{name: "missing_header", header: "", wantStatusCode: http.StatusUnauthorized},
		{name: "not_bearer", header: "Basic abc123", wantStatusCode: http.StatusUnauthorized},
		{name: "empty_bearer", header: "Bearer ", wantStatusCode: http.StatusUnauthorized},
		{name: "garbage_token", header: "Bearer not.a.jwt", wantStatusCode: http.StatusUnauthorized},
		{name: "refresh_token_rejected", header: "Bearer " + refreshToken, wantStatusCode: http.StatusUnauthorized},
	}

	r := authedRouter(middlewares.NewAuthMiddleware(manager))

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	manager := auth.NewManager(testSecret, 15*time.Minute, 7*24*time.Hour)
	m := middlewares.NewAuthMiddleware(manager)

	r := gin.New()

	r.POST("/v1/library", m.RequireAuth(), m.RequireRole("admin"), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	adminToken, err := manager.GenerateAccessToken("admin-1", "admin", "admin")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	userToken, err := manager.GenerateAccessToken("user-1", "flexibella", "user")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name           string
		token          string
		wantStatusCode int
	}{
		{name: "admin_allowed", token: adminToken, wantStatusCode: http.StatusCreated},
		{name: "user_forbidden", token: userToken, wantStatusCode: http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/library", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := middlewares.NewRateLimiter(3, time.Minute)

	r := gin.New()
	r.POST("/auth/login", rl.RateLimiterMiddleware(middlewares.KeyByIP), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: got status %d, want %d", i+1, w.Code, http.StatusOK)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:1234"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusTooManyRequests)
	}

	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("expected a Retry-After header")
	}

	// A different client still has a fresh bucket.
	other := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	other.RemoteAddr = "198.51.100.9:1234"

	w = httptest.NewRecorder()
	r.ServeHTTP(w, other)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d for a second client, want %d", w.Code, http.StatusOK)
	}
}

func TestRequestLoggerIncludesAuthenticatedUser(t *testing.T) {
	var buf bytes.Buffer

	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	r := gin.New()
	r.Use(middlewares.RequestLogger())
	r.GET("/v1/me", func(c *gin.Context) {
		middlewares.SetIdentity(c, "user-1", "flexibella", "user")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if !strings.Contains(buf.String(), `"user":"flexibella"`) {
		t.Fatalf("request log missing username, got %s", buf.String())
	}
}
