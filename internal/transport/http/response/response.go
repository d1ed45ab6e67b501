package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"finance-tracker/internal/core/auth"
	"finance-tracker/internal/domain"
)

// Resp 成功响应；Count 仅列表接口输出
type Resp struct {
	Success bool   `json:"success"`
	Count   *int   `json:"count,omitempty"`
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

// ErrorBody 失败响应
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

func OK(data any) Resp { return Resp{Success: true, Data: data} }

func Created(data any, msg string) Resp { return Resp{Success: true, Data: data, Message: msg} }

func List(data any, n int) Resp { return Resp{Success: true, Count: &n, Data: data} }

// Error 失败响应（msg 为空时使用默认文案）
func Error(code, msg string) ErrorBody {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	return ErrorBody{Error: msg, Code: code}
}

// StatusError is an error that knows its HTTP status and code.
type StatusError interface {
	error
	HTTPStatus() int
	ErrorCode() string
}

// FromError maps any error from the gate, the services or a handler to its
// status and body. With debug set, unexpected errors carry their text in details.
func FromError(err error, debug bool) (int, ErrorBody) {
	var (
		ae   *auth.Error
		ve   *domain.ValidationError
		ce   *domain.ConflictError
		serr StatusError
	)
	switch {
	case errors.As(err, &ae):
		return http.StatusUnauthorized, Error(ae.Code, ae.Msg)
	case errors.As(err, &ve):
		b := Error(CodeValidation, "")
		b.Details = ve.Messages
		return http.StatusBadRequest, b
	case errors.As(err, &ce):
		return http.StatusBadRequest, Error(CodeConflict, ce.Msg)
	case errors.Is(err, domain.ErrConflict):
		return http.StatusBadRequest, Error(CodeConflict, "")
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Error(CodeNotFound, "")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(CodeInvalidCredentials, "")
	case errors.As(err, &serr):
		return serr.HTTPStatus(), Error(serr.ErrorCode(), serr.Error())
	case errors.Is(err, context.DeadlineExceeded):
		// 存储调用撞上 Timeout 中间件的截止时间
		return http.StatusGatewayTimeout, Error(CodeTimeout, "")
	}
	// auth.ServerError 与存储错误一样按 500 处理
	b := Error(CodeServerError, "")
	if debug && err != nil {
		b.Details = err.Error()
	}
	return http.StatusInternalServerError, b
}

// Fail writes the mapped error and aborts the chain.
func Fail(c *gin.Context, err error, debug bool) {
	status, body := FromError(err, debug)
	c.AbortWithStatusJSON(status, body)
}

// Abort writes an explicit status and code.
func Abort(c *gin.Context, status int, code string) {
	c.AbortWithStatusJSON(status, Error(code, ""))
}
