package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrMalformed     = errors.New("malformed record")
	ErrAlreadyExists = errors.New("already exists")
)
