package client

import "errors"

var (
	ErrUnavailable      = errors.New("server unavailable")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
)
