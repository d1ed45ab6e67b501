package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/domain"
	resp "finance-tracker/internal/transport/http/response"
)

const (
	KeyPrincipal = "principal"
	KeyUserID    = "userId"
	KeyRole      = "role"
)

// Authenticate runs the auth gate for the scheme(s) mode allows. On failure the
// request is aborted and never reaches the handler.
func Authenticate(g *auth.Gate, mode auth.Mode, debug bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred := auth.Select(c.Request.Header, mode)
		p, err := g.Authenticate(c.Request.Context(), cred)
		if err != nil {
			authFailures.WithLabelValues(auth.Code(err)).Inc()
			resp.Fail(c, err, debug)
			return
		}
		c.Set(KeyPrincipal, p)
		c.Set(KeyUserID, p.ID)
		c.Set(KeyRole, p.Role)
		c.Next()
	}
}

// CurrentPrincipal 取当前请求的身份
func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(KeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// HasRole reports whether the authenticated principal has one of roles.
// An empty roles list allows any principal.
func HasRole(c *gin.Context, roles ...string) bool {
	p, ok := CurrentPrincipal(c)
	if !ok {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// RequireRole 必须放在 Authenticate 之后
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasRole(c, roles...) {
			resp.Abort(c, http.StatusForbidden, resp.CodeForbidden)
			return
		}
		c.Next()
	}
}
