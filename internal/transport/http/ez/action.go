package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/domain"
	mdw "finance-tracker/internal/transport/http/middleware"
	resp "finance-tracker/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// AErr 处理函数显式指定状态码 / 错误码
type AErr struct {
	Status int
	Code   string
	Msg    string
	Err    error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if m, ok := resp.CodeMsgMap[e.Code]; ok {
		return m
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error     { return e.Err }
func (e *AErr) HTTPStatus() int   { return e.Status }
func (e *AErr) ErrorCode() string { return e.Code }

func BadRequest(msg string) error {
	return &AErr{Status: http.StatusBadRequest, Code: resp.CodeBadRequest, Msg: msg}
}
func Forbidden(msg string) error {
	return &AErr{Status: http.StatusForbidden, Code: resp.CodeForbidden, Msg: msg}
}
func NotFound(msg string) error {
	return &AErr{Status: http.StatusNotFound, Code: resp.CodeNotFound, Msg: msg}
}

// EZ 路由分组的轻封装
type EZ struct {
	g     *gin.RouterGroup
	debug bool
}

// New wraps g. With debug set, 500 responses carry the internal error text.
func New(g *gin.RouterGroup, debug bool) EZ { return EZ{g: g, debug: debug} }

// Action 动作定义：I 入参，O 出参（完整响应体）
type Action[I any, O any] struct {
	Method  string   // "GET" | "POST" | "PUT" | "DELETE"
	Path    string   // 例："/auth/login"、"/transactions/:id"
	Binder  Binder   // 绑定方式
	Status  int      // 成功状态码，默认 200
	Roles   []string // 限定角色（可选，需分组已走 Authenticate）
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		// 1) 角色
		if len(a.Roles) > 0 && !mdw.HasRole(c, a.Roles...) {
			resp.Abort(c, http.StatusForbidden, resp.CodeForbidden)
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			resp.Fail(c, bindError(bindErr), e.debug)
			return
		}

		// 3) 执行 + 统一错误映射
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err, e.debug)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

func bindError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &AErr{Status: http.StatusRequestEntityTooLarge, Code: resp.CodeBodyTooLarge, Err: err}
	}
	return &domain.ValidationError{Messages: []string{"invalid request body: " + err.Error()}}
}
