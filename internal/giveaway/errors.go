package giveaway

import "errors"

// Domain-specific errors for the giveaway package.
var (
	ErrNotFound      = errors.New("giveaway not found")
	ErrPermission    = errors.New("missing permission")
	ErrEmptyTitle    = errors.New("giveaway title is empty")
	ErrInvalidWinner = errors.New("winner count must be at least 1")
)
