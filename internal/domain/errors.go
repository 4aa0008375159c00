package domain

import "errors"

var (
	ErrNotFound        = errors.New("patient not found")
	ErrInvalidArgument = errors.New("invalid argument")
)
