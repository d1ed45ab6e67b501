package domain

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries every field-level violation found in one pass.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// Add 追加一条错误信息
func (e *ValidationError) Add(msg string) { e.Messages = append(e.Messages, msg) }

// Err returns nil when no message was collected.
func (e *ValidationError) Err() error {
	if len(e.Messages) == 0 {
		return nil
	}
	return e
}

// ConflictError is a uniqueness violation with a caller-facing message.
// errors.Is(err, ErrConflict) holds for it.
type ConflictError struct{ Msg string }

func (e *ConflictError) Error() string        { return e.Msg }
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
