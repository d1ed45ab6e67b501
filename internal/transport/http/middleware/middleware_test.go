package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/domain"
	resp "finance-tracker/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type users map[string]*domain.User

func (u users) FindByID(_ context.Context, id string) (*domain.User, error) {
	if x, ok := u[id]; ok {
		return x, nil
	}
	return nil, domain.ErrNotFound
}

func (u users) FindByAPIToken(_ context.Context, tok string) (*domain.User, error) {
	for _, x := range u {
		if x.APIToken == tok {
			return x, nil
		}
	}
	return nil, domain.ErrNotFound
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var b resp.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return b.Code
}

func TestAuthenticateAndRoles(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "test", TTL: time.Hour}
	store := users{
		"u1": {ID: "u1", Email: "ana@example.com", Role: domain.RoleUser, APIToken: "tok-ana"},
		"a1": {ID: "a1", Email: "root@example.com", Role: domain.RoleAdmin, APIToken: "tok-root"},
	}
	g := auth.NewGate(j, store)

	r := gin.New()
	r.GET("/either", Authenticate(g, auth.BearerOrAPIToken, false), func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.String(http.StatusOK, p.ID)
	})
	r.GET("/admin", Authenticate(g, auth.BearerOnly, false), RequireRole(domain.RoleAdmin), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(KeyUserID))
	})

	userTok, _ := j.Issue("u1", "ana@example.com", domain.RoleUser)
	adminTok, _ := j.Issue("a1", "root@example.com", domain.RoleAdmin)

	cases := []struct {
		name   string
		path   string
		header map[string]string
		status int
		body   string
		code   string
	}{
		{"no credentials", "/either", nil, 401, "", "NO_TOKEN"},
		{"bearer", "/either", map[string]string{"Authorization": "Bearer " + userTok}, 200, "u1", ""},
		{"api token", "/either", map[string]string{"X-API-Token": "tok-root"}, 200, "a1", ""},
		{"bad api token with good bearer", "/either", map[string]string{"X-API-Token": "nope", "Authorization": "Bearer " + userTok}, 401, "", "INVALID_API_TOKEN"},
		{"user on admin route", "/admin", map[string]string{"Authorization": "Bearer " + userTok}, 403, "", resp.CodeForbidden},
		{"admin", "/admin", map[string]string{"Authorization": "Bearer " + adminTok}, 200, "a1", ""},
		{"api token ignored on bearer route", "/admin", map[string]string{"X-API-Token": "tok-root"}, 401, "", "NO_TOKEN"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			w := do(r, req)
			if w.Code != tc.status {
				t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
			}
			if tc.code != "" && errCode(t, w) != tc.code {
				t.Fatalf("code = %s", errCode(t, w))
			}
			if tc.body != "" && w.Body.String() != tc.body {
				t.Fatalf("body = %s", w.Body.String())
			}
		})
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitPerIP(0.001, 2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		return do(r, req).Code
	}
	if from("10.0.0.1") != 204 || from("10.0.0.1") != 204 {
		t.Fatal("burst should be allowed")
	}
	if code := from("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d", code)
	}
	if from("10.0.0.2") != 204 {
		t.Fatal("other IPs have their own bucket")
	}
}

func TestIPLimiterSweep(t *testing.T) {
	l := &ipLimiter{rps: 1, burst: 1, buckets: map[string]*ipBucket{}}
	now := time.Now()
	l.allow("old", now.Add(-time.Hour))
	l.allow("fresh", now)
	l.sweep(now)
	if _, ok := l.buckets["old"]; ok {
		t.Fatal("idle bucket not swept")
	}
	if _, ok := l.buckets["fresh"]; !ok {
		t.Fatal("active bucket swept")
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(KeyRequestID)) })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Header().Get(KeyRequestID) == "" || w.Body.String() != w.Header().Get(KeyRequestID) {
		t.Fatalf("generated id missing: %q", w.Header().Get(KeyRequestID))
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "abc-123")
	if got := do(r, req).Header().Get(KeyRequestID); got != "abc-123" {
		t.Fatalf("inbound id not kept: %q", got)
	}
	for _, bad := range []string{"has space", "quote\"", strings.Repeat("a", 65)} {
		req = httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(KeyRequestID, bad)
		if got := do(r, req).Header().Get(KeyRequestID); got == bad || got == "" {
			t.Fatalf("id %q should be replaced, got %q", bad, got)
		}
	}
}

func TestRecoveryWritesErrorBody(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError || errCode(t, w) != resp.CodeServerError {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) { <-c.Request.Context().Done() })

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusGatewayTimeout || errCode(t, w) != resp.CodeTimeout {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestTimeoutStoreErrorIs504(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/", func(c *gin.Context) {
		ctx := c.Request.Context()
		<-ctx.Done()
		resp.Fail(c, fmt.Errorf("list transactions: %w", ctx.Err()), true)
	})

	w := do(r, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusGatewayTimeout || errCode(t, w) != resp.CodeTimeout {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestConcurrencyLimitCancelled(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(1, 0))
	hold := make(chan struct{})
	started := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) { close(started); <-hold; c.Status(http.StatusOK) })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan int)
	go func() { done <- do(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	w := do(r, httptest.NewRequest(http.MethodGet, "/fast", nil).WithContext(ctx))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected busy, got %d", w.Code)
	}
	close(hold)
	if code := <-done; code != http.StatusOK {
		t.Fatalf("slow request = %d", code)
	}
}

func TestConcurrencyLimitWait(t *testing.T) {
	r := gin.New()
	r.Use(ConcurrencyLimit(1, 10*time.Millisecond))
	hold := make(chan struct{})
	started := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) { close(started); <-hold; c.Status(http.StatusOK) })
	r.GET("/fast", func(c *gin.Context) { c.Status(http.StatusOK) })

	done := make(chan struct{})
	go func() { do(r, httptest.NewRequest(http.MethodGet, "/slow", nil)); close(done) }()
	<-started
	w := do(r, httptest.NewRequest(http.MethodGet, "/fast", nil))
	close(hold)
	<-done
	if w.Code != http.StatusServiceUnavailable || errCode(t, w) != resp.CodeServerBusy {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func TestMaxBodyBytesDeclaredLength(t *testing.T) {
	r := gin.New()
	r.Use(MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge || errCode(t, w) != resp.CodeBodyTooLarge {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
	if w = do(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("ok"))); w.Code != http.StatusNoContent {
		t.Fatalf("small body = %d", w.Code)
	}
}

func TestMaskQuery(t *testing.T) {
	got := maskQuery(map[string][]string{"Password": {"x"}, "category": {"comida"}})
	if got["Password"][0] != "****" || got["category"][0] != "comida" {
		t.Fatalf("masked = %v", got)
	}
}
