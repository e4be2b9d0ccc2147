package exceptions

import "errors"

var (
	ErrNoSession    = errors.New("no authenticated session")
	ErrTaskNotFound = errors.New("task not found")
)
