package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/dispatch/internal/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticResolver map[string]string

func (r staticResolver) Resolve(ctx context.Context, token string) (string, error) {
	key, ok := r[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return key, nil
}

func newAuthRouter() *gin.Engine {
	router := gin.New()
	router.Use(Auth(staticResolver{"tok_good": "020-555"}))
	router.GET("/open", func(c *gin.Context) {
		c.String(http.StatusOK, ContactKey(c))
	})
	router.GET("/closed", RequireIdentity(), func(c *gin.Context) {
		c.String(http.StatusOK, ContactKey(c))
	})
	return router
}

func TestAuth_ResolvesBearerToken(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/closed", nil)
	req.Header.Set("Authorization", "Bearer tok_good")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "020-555" {
		t.Errorf("expected 200 with contact key, got %d %q", w.Code, w.Body.String())
	}
}

func TestAuth_AnonymousAllowedOnOpenRoutes(t *testing.T) {
	router := newAuthRouter()

	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer tok_bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK || w.Body.String() != "" {
		t.Errorf("expected anonymous 200, got %d %q", w.Code, w.Body.String())
	}
}

func TestRequireIdentity_Rejects(t *testing.T) {
	router := newAuthRouter()

	for _, header := range []string{"", "tok_good", "Bearer ", "Bearer tok_bad"} {
		req := httptest.NewRequest(http.MethodGet, "/closed", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, w.Code)
		}
		if !strings.Contains(w.Body.String(), `"unauthorized"`) {
			t.Errorf("header %q: unexpected body %s", header, w.Body.String())
		}
	}
}

func TestRateLimiter(t *testing.T) {
	router := gin.New()
	router.Use(RateLimiter(2))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	var body string
	for i := range codes {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes[i] = w.Code
		body = w.Body.String()
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if !strings.Contains(body, "Maximum 2 requests") {
		t.Errorf("unexpected limit message %s", body)
	}
}

func TestCORS_Preflight(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.POST("/jobs", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/jobs", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) { c.String(http.StatusOK, RequestIDFrom(c)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() == "" || w.Header().Get("X-Request-ID") != w.Body.String() {
		t.Errorf("expected generated id in header and context, got %q / %q", w.Header().Get("X-Request-ID"), w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Body.String() != "abc-123" {
		t.Errorf("expected client id to be kept, got %q", w.Body.String())
	}
}
