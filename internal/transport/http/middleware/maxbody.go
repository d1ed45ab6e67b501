package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "finance-tracker/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小。声明的 Content-Length 超限直接 413；
// 未声明长度的请求在绑定时由 MaxBytesReader 截断，ez 同样映射为 413。
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.CodeBodyTooLarge)
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		}
		c.Next()
	}
}
