package apierr

import (
	"errors"
	"fmt"
)

const (
	CodeBaselineNotFound      = "baseline_not_found"
	CodePromotionNotFound     = "promotion_not_found"
	CodeBaselineCalculating   = "baseline_calculating"
	CodeBaselineStatusInvalid = "baseline_status_invalid"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func NotFound(code string, err error) *Error {
	return &Error{Status: 404, Code: code, Err: err}
}

func Conflict(code string, err error) *Error {
	return &Error{Status: 409, Code: code, Err: err}
}

// Code extracts the taxonomy code from err, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 404
}

func IsConflict(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == 409
}
