package auth

import "errors"

// Error is an authentication failure with a stable machine-readable code.
type Error struct {
	Code string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrNoToken         = &Error{Code: "NO_TOKEN", Msg: "authentication required"}
	ErrInvalidToken    = &Error{Code: "INVALID_TOKEN", Msg: "invalid token"}
	ErrTokenExpired    = &Error{Code: "TOKEN_EXPIRED", Msg: "token expired, please log in again"}
	ErrUserNotFound    = &Error{Code: "USER_NOT_FOUND", Msg: "user does not exist or was removed"}
	ErrNoAPIToken      = &Error{Code: "NO_API_TOKEN", Msg: "api token not provided"}
	ErrInvalidAPIToken = &Error{Code: "INVALID_API_TOKEN", Msg: "invalid api token"}
)

// ServerError 存储失败等非鉴权原因
type ServerError struct{ Err error }

func (e *ServerError) Error() string { return "auth lookup failed: " + e.Err.Error() }
func (e *ServerError) Unwrap() error { return e.Err }

// Code returns the auth code of err, or "" when err is not an auth failure.
func Code(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	var se *ServerError
	if errors.As(err, &se) {
		return "SERVER_ERROR"
	}
	return ""
}
