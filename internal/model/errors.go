package model

import "errors"

// Common errors used across the application
var (
	// Registry errors
	ErrUserNotFound    = errors.New("user not found")
	ErrEmptyUsername   = errors.New("username is empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrNotJoined       = errors.New("connection has not joined")

	// Message errors
	ErrEmptyMessage   = errors.New("message is empty")
	ErrMessageTooLong = errors.New("message too long")
)
