package response

// 错误码：字符串，前端按 code 分支
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeBodyTooLarge       = "BODY_TOO_LARGE"
	CodeTooManyRequests    = "TOO_MANY_REQUESTS"
	CodeServerBusy         = "SERVER_BUSY"
	CodeTimeout            = "TIMEOUT"
	CodeServerError        = "SERVER_ERROR"
)

// CodeMsgMap 默认文案
var CodeMsgMap = map[string]string{
	CodeValidation:         "validation failed",
	CodeBadRequest:         "bad request",
	CodeInvalidCredentials: "invalid email or password",
	CodeForbidden:          "forbidden",
	CodeNotFound:           "resource not found",
	CodeConflict:           "resource already exists",
	CodeBodyTooLarge:       "request body too large",
	CodeTooManyRequests:    "too many requests",
	CodeServerBusy:         "server busy",
	CodeTimeout:            "request timed out",
	CodeServerError:        "internal server error",
}
