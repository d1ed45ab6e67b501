package ez

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	mdw "finance-tracker/internal/transport/http/middleware"
	resp "finance-tracker/internal/transport/http/response"
)

func init() { gin.SetMode(gin.TestMode) }

type echoIn struct {
	Name string `json:"name" form:"name"`
}

type echoOut struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

func newEngine(debug bool, handler func(c *gin.Context, in *echoIn) (echoOut, error)) *gin.Engine {
	r := gin.New()
	r.Use(mdw.MaxBodyBytes(32))
	r.Use(func(c *gin.Context) {
		if role := c.GetHeader("X-Test-Role"); role != "" {
			c.Set(mdw.KeyPrincipal, domain.Principal{ID: "p", Role: role})
		}
	})
	e := New(r.Group("/v1"), debug)
	RegisterAction(e, Action[echoIn, echoOut]{Method: http.MethodPost, Path: "/echo", Binder: BindJSON, Status: http.StatusCreated, Handler: handler})
	RegisterAction(e, Action[echoIn, echoOut]{Method: http.MethodGet, Path: "/echo", Binder: BindQuery, Handler: handler})
	RegisterAction(e, Action[struct{}, echoOut]{
		Method: http.MethodDelete, Path: "/admin/:id", Binder: BindNone, Roles: []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (echoOut, error) { return echoOut{Success: true, Name: c.Param("id")}, nil },
	})
	return r
}

func echo(c *gin.Context, in *echoIn) (echoOut, error) {
	return echoOut{Success: true, Name: in.Name}, nil
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) resp.ErrorBody {
	t.Helper()
	var b resp.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return b
}

func TestRegisterActionBindsAndResponds(t *testing.T) {
	r := newEngine(false, echo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(`{"name":"ana"}`)))
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"name":"ana"`) {
		t.Fatalf("post: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo?name=bob", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"name":"bob"`) {
		t.Fatalf("get: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterActionBindErrors(t *testing.T) {
	r := newEngine(false, echo)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(`{"name":`)))
	if w.Code != http.StatusBadRequest || decodeErr(t, w).Code != resp.CodeValidation {
		t.Fatalf("malformed: %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	big := `{"name":"` + strings.Repeat("x", 64) + `"}`
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/echo", strings.NewReader(big)))
	if w.Code != http.StatusRequestEntityTooLarge || decodeErr(t, w).Code != resp.CodeBodyTooLarge {
		t.Fatalf("too large: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterActionRoles(t *testing.T) {
	r := newEngine(false, echo)

	req := httptest.NewRequest(http.MethodDelete, "/v1/admin/42", nil)
	req.Header.Set("X-Test-Role", domain.RoleUser)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("user: %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/admin/42", nil)
	req.Header.Set("X-Test-Role", domain.RoleAdmin)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"42"`) {
		t.Fatalf("admin: %d %s", w.Code, w.Body.String())
	}
}

func TestRegisterActionErrorMapping(t *testing.T) {
	boom := errors.New("disk on fire")
	cases := []struct {
		name   string
		err    error
		debug  bool
		status int
		code   string
		detail bool
	}{
		{"aerr", NotFound("no such thing"), false, 404, resp.CodeNotFound, false},
		{"bad request", BadRequest("nope"), false, 400, resp.CodeBadRequest, false},
		{"domain", domain.ErrNotFound, false, 404, resp.CodeNotFound, false},
		{"internal hidden", boom, false, 500, resp.CodeServerError, false},
		{"internal debug", boom, true, 500, resp.CodeServerError, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newEngine(tc.debug, func(*gin.Context, *echoIn) (echoOut, error) { return echoOut{}, tc.err })
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/echo", nil))
			b := decodeErr(t, w)
			if w.Code != tc.status || b.Code != tc.code || (b.Details != nil) != tc.detail {
				t.Fatalf("got %d %+v", w.Code, b)
			}
		})
	}
}
