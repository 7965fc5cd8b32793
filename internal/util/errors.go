package util

import "errors"

var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrVersionConflict = errors.New("case version does not match the current case version")
	ErrInvalidInput    = errors.New("invalid input")
	ErrAttemptNotFound = errors.New("attempt not found")
)
