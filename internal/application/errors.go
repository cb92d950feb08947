package application

import "errors"

var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrStorageDisabled   = errors.New("object storage not configured")
)
