package services

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrInvalidOperation = errors.New("invalid operation")
)

// invalidError 携带具体原因的非法操作错误，errors.Is(err, ErrInvalidOperation) 成立
type invalidError struct {
	msg string
}

func (e *invalidError) Error() string { return e.msg }

func (e *invalidError) Unwrap() error { return ErrInvalidOperation }

func invalidf(format string, args ...any) error {
	return &invalidError{msg: fmt.Sprintf(format, args...)}
}

var (
	ErrSelfFollow    = invalidf("cannot follow yourself")
	ErrTooFewItems   = invalidf("a list needs at least %d items with a name", MinListItems)
	ErrTitleRequired = invalidf("title is required")
	ErrEmptyComment  = invalidf("comment content is required")
	ErrUsernameTaken = invalidf("username already taken")
)
