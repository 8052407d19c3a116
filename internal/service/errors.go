package service

import (
	"errors"
	"fmt"
)

// Error categories. Use errors.Is against these; the concrete *Error
// carries the message shown to the caller.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrStorage    = errors.New("storage error")
)

// Error - ошибка сервиса с категорией и коротким сообщением для клиента.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

var (
	errCaseNotFound    = &Error{Kind: ErrNotFound, Msg: "Case not found"}
	errAlreadyBorrowed = &Error{Kind: ErrConflict, Msg: "Case is already borrowed"}
	errAlreadyInRoom   = &Error{Kind: ErrConflict, Msg: "Case is already in room"}
	errStorage         = &Error{Kind: ErrStorage, Msg: "internal error"}
)

// Message returns the caller-facing text of err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
